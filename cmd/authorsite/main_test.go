package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{{"serve"}, {"migrate"}, {"cache", "purge"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, "%v", path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	flag := root.PersistentFlags().Lookup("env-file")
	require.NotNil(t, flag)
	assert.Equal(t, ".env", flag.DefValue)
}

func TestCachePurge_RejectsExtraArgs(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--env-file", t.TempDir() + "/missing.env", "cache", "purge", "a", "b"})

	err := root.Execute()
	assert.ErrorContains(t, err, "accepts at most 1 arg")
}

func TestMigrate_RequiresConfig(t *testing.T) {
	t.Setenv("AUTHORSITE_CMS_BASE_URL", "")
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--env-file", t.TempDir() + "/missing.env", "migrate"})

	err := root.Execute()
	assert.ErrorContains(t, err, "AUTHORSITE_CMS_BASE_URL")
}

func TestMigrate_PrintsVersion(t *testing.T) {
	t.Setenv("AUTHORSITE_CMS_BASE_URL", "https://cms.example.com/wp-json/wp/v2")
	t.Setenv("AUTHORSITE_DB_PATH", t.TempDir()+"/site.db")
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--env-file", t.TempDir() + "/missing.env", "migrate"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "schema version 2\n", out.String())
}
