package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"scrape", "batch", "onboard", "serve", "businesses"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "siteforge", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestScrapeCommand_Flags(t *testing.T) {
	require.NotNil(t, scrapeCmd.Flags().Lookup("url"))
	f := scrapeCmd.Flags().Lookup("format")
	require.NotNil(t, f)
	assert.Equal(t, "json", f.DefValue)
}

func TestBatchCommand_Flags(t *testing.T) {
	for _, name := range []string{"file", "concurrency", "rps", "save"} {
		assert.NotNil(t, batchCmd.Flags().Lookup(name), "batch should have --%s flag", name)
	}
	assert.Equal(t, "-", batchCmd.Flags().Lookup("file").DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	f := serveCmd.Flags().Lookup("port")
	require.NotNil(t, f)
	assert.Equal(t, "0", f.DefValue)
}

func TestBusinessesCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range businessesCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["get"])
	assert.Equal(t, "20", businessesListCmd.Flags().Lookup("limit").DefValue)
}
