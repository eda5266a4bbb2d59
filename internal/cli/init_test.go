package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmesh-ai/openmesh-worker/internal/identity"
	"github.com/openmesh-ai/openmesh-worker/internal/keystore"
	"github.com/openmesh-ai/openmesh-worker/internal/paths"
)

func initArgs(dir string) []string {
	return []string{
		"init",
		"--state-dir", dir,
		"--name", "edge-01",
		"--region", "eu-west",
		"--coordinator-url", "https://pool.example.com",
		"--api-key", "omk_test",
	}
}

func TestInitCreatesIdentity(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, initArgs(dir)...)
	require.NoError(t, err)
	assert.Contains(t, out, "identity written")

	id, err := identity.Load(paths.StoragePaths{BaseDir: dir})
	require.NoError(t, err)
	assert.Equal(t, "edge-01", id.Name)
	assert.Equal(t, "eu-west", id.Region)
	assert.Equal(t, "https://pool.example.com", id.CoordinatorURL)
	assert.Equal(t, "omk_test", id.APIKey)
	assert.Empty(t, id.PublicKey)
}

func TestInitRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, initArgs(dir)...)
	require.NoError(t, err)

	_, err = execute(t, initArgs(dir)...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	// --force replaces it.
	args := append(initArgs(dir), "--force")
	_, err = execute(t, args...)
	require.NoError(t, err)
}

func TestInitRequiresFlags(t *testing.T) {
	_, err := execute(t, "init", "--state-dir", t.TempDir())
	assert.Error(t, err)
}

func TestKeygenUpdatesIdentity(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, initArgs(dir)...)
	require.NoError(t, err)

	out, err := execute(t, "keygen", "--state-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "public_key: ")

	p := paths.StoragePaths{BaseDir: dir}
	id, err := identity.Load(p)
	require.NoError(t, err)
	require.NotEmpty(t, id.PublicKey)

	kp, err := keystore.New(p).Load()
	require.NoError(t, err)
	assert.Equal(t, kp.PublicBase64(), id.PublicKey)
}

func TestKeygenWithoutIdentityFails(t *testing.T) {
	_, err := execute(t, "keygen", "--state-dir", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunWithoutKeyFails(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, initArgs(dir)...)
	require.NoError(t, err)

	// Identity exists but no key has been generated.
	_, err = execute(t, "run", "--state-dir", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestBenchWritesRecord(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "bench", "--state-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `"cpu":`)
	assert.Contains(t, out, `"os":`)
	assert.Contains(t, out, `"ram":`)
}

func TestJournalEmptyState(t *testing.T) {
	out, err := execute(t, "journal", "--state-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "journal is empty")
}
