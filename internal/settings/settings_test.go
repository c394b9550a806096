package settings

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSeedsDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	store, err := Open(path)
	require.NoError(t, err)

	got := store.Get()
	assert.Equal(t, "slipstream", string(got.Mode))
	assert.Equal(t, "en", string(got.Language))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, got, reopened.Get())
}

func TestNullStringToleratesJSONNull(t *testing.T) {
	var s NullString
	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.Equal(t, NullString(""), s)

	require.NoError(t, json.Unmarshal([]byte(`"hello"`), &s))
	assert.Equal(t, NullString("hello"), s)
}

func TestMergeAppliesOnlyProvidedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store, err := Open(path)
	require.NoError(t, err)

	resolvers := []string{"1.1.1.1:53"}
	updated, err := store.Merge(Patch{Resolvers: &resolvers})
	require.NoError(t, err)

	assert.Equal(t, resolvers, updated.Resolvers)
	assert.Equal(t, "slipstream", string(updated.Mode), "unrelated fields must survive a partial merge")
}

func TestRoundTripPreservesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store, err := Open(path)
	require.NoError(t, err)

	doc := store.Get()
	doc.Domain = "example.com"
	doc.Resolvers = []string{"8.8.8.8:53", "1.1.1.1:53"}
	require.NoError(t, store.Save(doc))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, doc, reopened.Get())
}

func TestValidateResolverBoundaries(t *testing.T) {
	cases := map[string]bool{
		"1.1.1.1:53":     true,
		"1.1.1.1":        false,
		"1.1.1.1:0":      false,
		"1.1.1.1.1:53":   false,
		"256.0.0.1:53":   false,
	}
	for resolver, wantOK := range cases {
		err := ValidateResolver(resolver)
		if wantOK {
			assert.NoError(t, err, resolver)
		} else {
			assert.Error(t, err, resolver)
		}
	}
}

func TestImportExportRoundTripModuloUUID(t *testing.T) {
	result, err := ImportConfigs("ssgate:X//eyJkb21haW4iOiJhLmIifQ==")
	require.NoError(t, err)
	require.Len(t, result.Imported, 1)
	assert.Equal(t, "a.b", string(result.Imported[0].Domain))
	assert.Equal(t, "X", string(result.Imported[0].Remark))
	assert.NotEmpty(t, result.Imported[0].ID)

	lines := ExportConfigs(result.Imported)
	require.Len(t, lines, 1)

	reimported, err := ImportConfigs(lines[0])
	require.NoError(t, err)
	require.Len(t, reimported.Imported, 1)
	assert.Equal(t, result.Imported[0].Domain, reimported.Imported[0].Domain)
	assert.Equal(t, result.Imported[0].Remark, reimported.Imported[0].Remark)
	assert.NotEqual(t, result.Imported[0].ID, reimported.Imported[0].ID, "import never dedupes, each call mints a fresh id")
}

func TestImportTracksBadLinesWithoutAborting(t *testing.T) {
	result, err := ImportConfigs("not-a-valid-line\nssgate:X//eyJkb21haW4iOiJhLmIifQ==")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Errors)
	assert.Len(t, result.Imported, 1)
}
