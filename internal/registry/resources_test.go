package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Covers the longest-prefix resolution rule: a request URI should resolve to whichever
// registered pattern is the longest prefix of it, not merely any matching prefix.
func TestResourceRegistryLongestPrefixMatch(t *testing.T) {
	r := NewResourceRegistry(nil)

	general := NewInMemoryResourceProvider(
		[]ResourceContent{{URI: "files://project/readme.md", Data: "general"}},
		nil,
	)
	specific := NewInMemoryResourceProvider(
		[]ResourceContent{{URI: "files://project/readme.md", Data: "specific"}},
		nil,
	)

	require.NoError(t, r.Register(ResourceDefinition{URIPattern: "files://project/", Provider: general}))
	require.NoError(t, r.Register(ResourceDefinition{URIPattern: "files://project/readme", Provider: specific}))

	content, err := r.Get(context.Background(), "files://project/readme.md", nil)
	require.NoError(t, err)
	assert.Equal(t, "specific", content.Data)
}

func TestResourceRegistryExactMatchWinsOverPrefix(t *testing.T) {
	r := NewResourceRegistry(nil)
	exact := NewInMemoryResourceProvider([]ResourceContent{{URI: "files://a", Data: "exact"}}, nil)
	prefix := NewInMemoryResourceProvider([]ResourceContent{{URI: "files://a", Data: "prefix"}}, nil)

	require.NoError(t, r.Register(ResourceDefinition{URIPattern: "files://a", Provider: exact}))
	require.NoError(t, r.Register(ResourceDefinition{URIPattern: "files://", Provider: prefix}))

	content, err := r.Get(context.Background(), "files://a", nil)
	require.NoError(t, err)
	assert.Equal(t, "exact", content.Data)
}

func TestResourceRegistryNoProviderFound(t *testing.T) {
	r := NewResourceRegistry(nil)
	_, err := r.Get(context.Background(), "files://unknown", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No provider found for resource 'files://unknown'")
}

func TestResourceRegistryRejectsDuplicatePattern(t *testing.T) {
	r := NewResourceRegistry(nil)
	def := ResourceDefinition{URIPattern: "files://x", Provider: NewInMemoryResourceProvider(nil, nil)}
	require.NoError(t, r.Register(def))
	err := r.Register(def)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestResourceRegistryListConcatenatesAndAbsorbsErrors(t *testing.T) {
	r := NewResourceRegistry(nil)
	good := NewInMemoryResourceProvider(nil, []Descriptor{{Name: "one"}, {Name: "two"}})
	failing := &erroringProvider{}

	require.NoError(t, r.Register(ResourceDefinition{URIPattern: "good://", Provider: good}))
	require.NoError(t, r.Register(ResourceDefinition{URIPattern: "bad://", Provider: failing}))

	list := r.List(context.Background(), "")
	assert.Len(t, list.Resources, 2)
}

type erroringProvider struct{}

func (p *erroringProvider) Get(_ context.Context, _ string) (ResourceContent, error) {
	return ResourceContent{}, assert.AnError
}

func (p *erroringProvider) List(_ context.Context, _ string) (ResourceList, error) {
	return ResourceList{}, assert.AnError
}

func TestInMemoryResourceProviderPagination(t *testing.T) {
	descriptors := make([]Descriptor, 120)
	for i := range descriptors {
		descriptors[i] = Descriptor{Name: string(rune('a' + i%26))}
	}
	p := NewInMemoryResourceProvider(nil, descriptors)

	first, err := p.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, first.Resources, 50)
	assert.Equal(t, "50", first.NextCursor)

	second, err := p.List(context.Background(), first.NextCursor)
	require.NoError(t, err)
	assert.Len(t, second.Resources, 50)
	assert.Equal(t, "100", second.NextCursor)

	third, err := p.List(context.Background(), second.NextCursor)
	require.NoError(t, err)
	assert.Len(t, third.Resources, 20)
	assert.Empty(t, third.NextCursor)
}

func TestInMemoryResourceProviderGet(t *testing.T) {
	p := NewInMemoryResourceProvider([]ResourceContent{{URI: "files://a", Data: "content-a"}}, nil)

	content, err := p.Get(context.Background(), "files://a")
	require.NoError(t, err)
	assert.Equal(t, "content-a", content.Data)

	_, err = p.Get(context.Background(), "files://missing")
	require.Error(t, err)
}
