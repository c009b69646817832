package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDispatchByExtension(t *testing.T) {
	r := NewRegistry()
	goPlugin := &LanguagePlugin{Name: "go", Extensions: []string{".go"}}
	r.RegisterLanguage(goPlugin)

	got := r.LanguageForExtension(".go")
	require.NotNil(t, got)
	assert.Equal(t, "go", got.Name)

	assert.Nil(t, r.LanguageForExtension(".rs"))
}

func TestRegistryFirstRegistrationWinsOnConflict(t *testing.T) {
	r := NewRegistry()
	first := &LanguagePlugin{Name: "first", Extensions: []string{".x"}}
	second := &LanguagePlugin{Name: "second", Extensions: []string{".x"}}
	r.RegisterLanguage(first)
	r.RegisterLanguage(second)

	got := r.LanguageForExtension(".x")
	require.NotNil(t, got)
	assert.Equal(t, "first", got.Name)
}

func TestRegistryExtensionLookupCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.RegisterLanguage(&LanguagePlugin{Name: "go", Extensions: []string{".GO"}})
	got := r.LanguageForExtension(".go")
	require.NotNil(t, got)
	assert.Equal(t, "go", got.Name)
}

func TestRegistryBuildToolRecognition(t *testing.T) {
	r := NewRegistry()
	r.RegisterBuildTool(&BuildToolPlugin{
		Name:      "gomod",
		Recognize: func(name string) bool { return name == "go.mod" },
	})
	got := r.BuildToolFor("go.mod")
	require.NotNil(t, got)
	assert.Equal(t, "gomod", got.Name)
	assert.Nil(t, r.BuildToolFor("pom.xml"))
}
