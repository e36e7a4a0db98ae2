package sources

import (
	"path/filepath"
	"testing"

	"github.com/jonathan/docharvest/internal/config"
	"github.com/jonathan/docharvest/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_CanonicalizesAndDeduplicates(t *testing.T) {
	t.Setenv("TEST_IMAP_SECRET", "app-password")
	root := t.TempDir()

	cfg := &config.Config{
		Mailboxes: []config.MailboxSource{
			{Address: " Jane.Doe@Example.COM ", Host: "imap.example.com:993", SecretRef: "TEST_IMAP_SECRET"},
			{Address: "jane.doe@example.com", Host: "imap.example.com:993", SecretRef: "TEST_IMAP_SECRET"},
		},
		Directories: []config.DirectorySource{
			{Root: root},
			{Root: root + string(filepath.Separator) + "."},
		},
	}

	descriptors, err := Resolve(cfg)
	require.NoError(t, err)

	require.Len(t, descriptors, 2)
	assert.Equal(t, types.SourceMailbox, descriptors[0].Kind)
	assert.Equal(t, "jane.doe@example.com", descriptors[0].Address)
	assert.Equal(t, "INBOX", descriptors[0].Settings.Folder)
	assert.Equal(t, types.SourceDirectory, descriptors[1].Kind)
	assert.Equal(t, root, descriptors[1].Address)
}

func TestResolve_NonexistentRootFails(t *testing.T) {
	cfg := &config.Config{
		Directories: []config.DirectorySource{{Root: "/definitely/not/a/real/path"}},
	}

	_, err := Resolve(cfg)
	require.Error(t, err)

	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestResolve_InvalidMailboxHostFails(t *testing.T) {
	t.Setenv("TEST_IMAP_SECRET", "x")
	cfg := &config.Config{
		Mailboxes: []config.MailboxSource{
			{Address: "a@b.com", Host: "no-port-here", SecretRef: "TEST_IMAP_SECRET"},
		},
	}

	_, err := Resolve(cfg)
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "invalid IMAP host")
}

func TestResolve_MissingSecretFails(t *testing.T) {
	cfg := &config.Config{
		Mailboxes: []config.MailboxSource{
			{Address: "a@b.com", Host: "imap.example.com:993", SecretRef: "UNSET_ENV_VAR_FOR_TEST"},
		},
	}

	_, err := Resolve(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNSET_ENV_VAR_FOR_TEST")
}

func TestResolve_ExtensionNormalization(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Config{
		Directories: []config.DirectorySource{
			{Root: root, Extensions: []string{"PDF", ".docx", " txt "}},
		},
	}

	descriptors, err := Resolve(cfg)
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	assert.Equal(t, []string{".pdf", ".docx", ".txt"}, descriptors[0].Settings.Extensions)
}

func TestResolve_DefaultExtensionsApplied(t *testing.T) {
	cfg := &config.Config{
		Directories: []config.DirectorySource{{Root: t.TempDir()}},
	}

	descriptors, err := Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultExtensions, descriptors[0].Settings.Extensions)
}
