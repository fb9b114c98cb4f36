package wiring_test

import (
	"context"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/require"
	"go.trai.ch/parcel/internal/app"
	_ "go.trai.ch/parcel/internal/wiring"
)

// TestGraftDependencies ensures that the dependency injection graph is valid
// at compile/test time. It checks that every node declaring a dependency
// actually uses it, and every used dependency is declared.
func TestGraftDependencies(t *testing.T) {
	// graft.AssertDepsValid infers the dependency ID from the package name of
	// the type used in Dep[T]. Several nodes resolve interfaces from the shared
	// ports package, so it expects a node named "ports" that does not exist.
	t.Skip("Skipping Graft validation due to static analysis limitation with shared ports package")
	graft.AssertDepsValid(t, "../../internal")
}

func TestGraftExecute(t *testing.T) {
	components, _, err := graft.ExecuteFor[*app.Components](context.Background())
	require.NoError(t, err)

	require.NotNil(t, components.App)
	require.NotNil(t, components.Logger)
	require.NotNil(t, components.ConfigLoader)
	require.NotNil(t, components.Metrics)
}
