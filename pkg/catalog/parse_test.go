package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	catmocks "github.com/glorpus-work/modpick/pkg/catalog/mocks"
	pkgerrors "github.com/glorpus-work/modpick/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const sampleManifest = `[
  {"name": "Utilla", "version": "1.6.9", "group": "Libraries", "git_path": "iDevs/Utilla",
   "download_url": "https://example.com/Utilla.dll", "author": "iDevs", "dependencies": []},
  {"name": "BepInEx", "version": "5.4.23", "group": "Core", "git_path": "BepInEx/BepInEx",
   "download_url": "https://example.com/BepInEx.zip", "author": "BepInEx team"},
  {"name": "Monke Map", "version": "2.0.0", "group": "Gameplay", "git_path": "owner/monkemap",
   "download_url": "https://example.com/MonkeMap.zip", "author": "owner", "dependencies": ["Utilla"]},
  {"name": "ComputerInterface", "version": "1.8.0", "group": "Libraries", "git_path": "ToniMacaroni/ComputerInterface",
   "download_url": "https://example.com/ComputerInterface.zip", "author": "Toni", "dependencies": ["Utilla", 7, null, true]}
]`

func TestParse_SortsAndFilters(t *testing.T) {
	cat, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, []string{"Monke Map", "Utilla", "ComputerInterface"}, cat.Names())

	utilla, ok := cat.Lookup("Utilla")
	require.True(t, ok)
	assert.Equal(t, "1.6.9", utilla.Version)
	assert.Equal(t, "Libraries", utilla.Category)
	assert.Equal(t, "iDevs/Utilla", utilla.RepositoryPath)
	assert.Equal(t, "https://example.com/Utilla.dll", utilla.DownloadURL)
	assert.Equal(t, "iDevs", utilla.Developers)
	assert.Empty(t, utilla.Dependencies)

	_, ok = cat.Lookup("BepInEx")
	assert.False(t, ok, "loader package must be excluded")
}

func TestParse_CategoriesNonDecreasing(t *testing.T) {
	cat, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	pkgs := cat.Packages()
	for i := 1; i < len(pkgs); i++ {
		assert.LessOrEqual(t, pkgs[i-1].Category, pkgs[i].Category)
	}
}

func TestParse_StableTies(t *testing.T) {
	raw := `[
	  {"name":"c","version":"1","group":"b","git_path":"o/c","download_url":"u/c.dll","author":"x"},
	  {"name":"a","version":"1","group":"a","git_path":"o/a","download_url":"u/a.dll","author":"x"},
	  {"name":"d","version":"1","group":"b","git_path":"o/d","download_url":"u/d.dll","author":"x"},
	  {"name":"b","version":"1","group":"a","git_path":"o/b","download_url":"u/b.dll","author":"x"}
	]`
	cat, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, cat.Names())
}

func TestParse_Idempotent(t *testing.T) {
	first, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)
	second, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, first.Packages(), second.Packages())
}

func TestParse_DependencyCoercion(t *testing.T) {
	cat, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	ci, ok := cat.Lookup("ComputerInterface")
	require.True(t, ok)
	assert.Equal(t, []string{"Utilla", "7", "", "true"}, ci.Dependencies)
}

func TestParse_DependenciesNotArray(t *testing.T) {
	raw := `[{"name":"a","version":"1","group":"g","git_path":"o/a","download_url":"u/a.dll","author":"x","dependencies":"Utilla"}]`
	cat, err := Parse([]byte(raw))
	require.NoError(t, err)

	a, ok := cat.Lookup("a")
	require.True(t, ok)
	assert.NotNil(t, a.Dependencies)
	assert.Empty(t, a.Dependencies)
}

func TestParse_FieldMissing(t *testing.T) {
	fields := []string{KeyName, KeyVersion, KeyCategory, KeyRepositoryPath, KeyDownloadURL, KeyDevelopers}
	valid := map[string]string{
		KeyName:           `"b"`,
		KeyVersion:        `"1.0"`,
		KeyCategory:       `"g"`,
		KeyRepositoryPath: `"o/b"`,
		KeyDownloadURL:    `"https://example.com/b.dll"`,
		KeyDevelopers:     `"dev"`,
	}

	for _, missing := range fields {
		for _, mode := range []string{"absent", "number", "null"} {
			t.Run(missing+"/"+mode, func(t *testing.T) {
				entry := "{"
				first := true
				for _, key := range fields {
					value := valid[key]
					if key == missing {
						switch mode {
						case "absent":
							continue
						case "number":
							value = "42"
						case "null":
							value = "null"
						}
					}
					if !first {
						entry += ","
					}
					first = false
					entry += fmt.Sprintf("%q:%s", key, value)
				}
				entry += "}"

				raw := `[{"name":"a","version":"1","group":"g","git_path":"o/a","download_url":"u/a.dll","author":"x"},` + entry + `]`
				cat, err := Parse([]byte(raw))
				require.Error(t, err)
				assert.Nil(t, cat, "no partial catalog on failure")
				assert.True(t, errors.Is(err, pkgerrors.ErrFieldMissing))

				var fieldErr *FieldMissingError
				require.True(t, errors.As(err, &fieldErr))
				assert.Equal(t, missing, fieldErr.Field)
				assert.Equal(t, 1, fieldErr.Index)
			})
		}
	}
}

func TestParse_InvalidDocument(t *testing.T) {
	for _, raw := range []string{`{"name":"a"}`, `null`, `[1, 2]`, `[null]`, `not json`, ``} {
		t.Run(raw, func(t *testing.T) {
			cat, err := Parse([]byte(raw))
			require.Error(t, err)
			assert.Nil(t, cat)
			assert.True(t, errors.Is(err, pkgerrors.ErrManifestInvalid), "got %v", err)
		})
	}
}

func TestParse_EmptyArray(t *testing.T) {
	cat, err := Parse([]byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, 0, cat.Len())
}

func TestParse_CustomExcludeMarker(t *testing.T) {
	cat, err := Parse([]byte(sampleManifest), WithExcludeMarker("iDevs"))
	require.NoError(t, err)
	_, ok := cat.Lookup("Utilla")
	assert.False(t, ok)
	_, ok = cat.Lookup("BepInEx")
	assert.True(t, ok)

	cat, err = Parse([]byte(sampleManifest), WithExcludeMarker(""))
	require.NoError(t, err)
	assert.Equal(t, 4, cat.Len())
}

func TestFetcher_Fetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	transport := catmocks.NewMockTransport(ctrl)
	transport.EXPECT().Fetch(gomock.Any(), "https://example.com/modinfo.json").Return([]byte(sampleManifest), nil).Times(1)

	f := NewFetcher(transport, "https://example.com/modinfo.json", DefaultExcludeMarker)
	cat, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, cat.Len())
}

func TestFetcher_TransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	transport := catmocks.NewMockTransport(ctrl)
	transport.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(nil, pkgerrors.ErrEmptyBody).Times(1)

	f := NewFetcher(transport, "https://example.com/modinfo.json", DefaultExcludeMarker)
	cat, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.Nil(t, cat)
	assert.True(t, errors.Is(err, pkgerrors.ErrFetchFailed))
	assert.True(t, errors.Is(err, pkgerrors.ErrEmptyBody))
}

func TestFetcher_ParseError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	transport := catmocks.NewMockTransport(ctrl)
	transport.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return([]byte(`[{"name":"a"}]`), nil).Times(1)

	f := NewFetcher(transport, "https://example.com/modinfo.json", DefaultExcludeMarker)
	_, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrFieldMissing))
	assert.False(t, errors.Is(err, pkgerrors.ErrFetchFailed))
}

func TestFetcher_NoTransport(t *testing.T) {
	f := &Fetcher{URL: "https://example.com"}
	_, err := f.Fetch(context.Background())
	require.Error(t, err)
}
