package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/azizikri/streak-rewards/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	headErr error
	putErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjects) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(params.Key)] = body
	f.types[aws.ToString(params.Key)] = aws.ToString(params.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(params.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeObjects) keys(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

func testStore(objects *fakeObjects) *Store {
	return NewStore(objects, R2Config{AccountID: "acct", Bucket: "badges", CDNBaseURL: "https://cdn.example/"})
}

func TestCatalog(t *testing.T) {
	b, ok := BadgeFor(10)
	require.True(t, ok)
	assert.Equal(t, "getting_started", b.Key)
	assert.Equal(t, "Getting Started NFT 2025", b.AssetName(2025))
	assert.Equal(t, "GS-2025", b.UnitName(2025))

	_, ok = BadgeFor(11)
	assert.False(t, ok)

	for _, m := range []int{10, 30, 60, 90, 180, 365} {
		b, ok := BadgeFor(m)
		require.True(t, ok, "milestone %d", m)
		e, ok := b.Edition(2025)
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(e.MetadataURL, "ipfs://"))
	}

	assert.Equal(t, "magenta", Colour(2027))
	assert.Equal(t, "blue", Colour(2040))
}

func TestSplitMilestones(t *testing.T) {
	known, unknown := SplitMilestones([]int{10, 7, 30, 400})
	assert.Equal(t, []int{10, 30}, known)
	assert.Equal(t, []int{7, 400}, unknown)

	known, unknown = SplitMilestones([]int{365})
	assert.Equal(t, []int{365}, known)
	assert.Empty(t, unknown)
}

func TestGenerateMetadata(t *testing.T) {
	b, _ := BadgeFor(30)
	doc := GenerateMetadata(b, 2027)

	assert.Equal(t, "Monthly Warrior NFT 2027", doc.Name)
	assert.Contains(t, doc.Description, "30-day wellness streak")
	assert.Equal(t, b.Artwork(2025), doc.Image)
	assert.Equal(t, "CareBox Pack", doc.Properties.Application)
	assert.Equal(t, "magenta", doc.Properties.ColourTheme)

	traits := map[string]any{}
	for _, a := range doc.Attributes {
		traits[a.TraitType] = a.Value
	}
	assert.Equal(t, "Monthly Warrior", traits["Achievement Type"])
	assert.Equal(t, "30 Days", traits["Streak Duration"])
	assert.Equal(t, "2027", traits["Year"])
	assert.Equal(t, "Magenta", traits["Colour Theme"])
	assert.Equal(t, "Consistency", traits["Category"])
}

func TestResolve_PublishedEdition(t *testing.T) {
	objects := newFakeObjects()
	url, err := NewResolver(testStore(objects)).Resolve(context.Background(), 10, 2025)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://Qme2MicDHUYcAMcNpkfLrrewaprUo6ig33R46kv3r6rZqB", url)
	assert.Empty(t, objects.keys(""))
}

func TestResolve_GeneratesMissingYearOnce(t *testing.T) {
	objects := newFakeObjects()
	r := NewResolver(testStore(objects))
	ctx := context.Background()

	url, err := r.Resolve(ctx, 60, 2026)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/badges/2026/consistency-champion-nft.json", url)

	var doc ARC3
	require.NoError(t, json.Unmarshal(objects.objects["badges/2026/consistency-champion-nft.json"], &doc))
	assert.Equal(t, "Consistency Champion NFT 2026", doc.Name)
	assert.Equal(t, "application/json", objects.types["badges/2026/consistency-champion-nft.json"])

	objects.putErr = errors.New("must not upload twice")
	again, err := r.Resolve(ctx, 60, 2026)
	require.NoError(t, err)
	assert.Equal(t, url, again)
}

func TestResolve_Failures(t *testing.T) {
	ctx := context.Background()

	_, err := NewResolver(nil).Resolve(ctx, 42, 2025)
	assert.ErrorIs(t, err, domain.ErrMetadataUnavailable)

	_, err = NewResolver(nil).Resolve(ctx, 10, 2026)
	assert.ErrorIs(t, err, domain.ErrMetadataUnavailable)

	objects := newFakeObjects()
	objects.headErr = errors.New("403 forbidden")
	_, err = NewResolver(testStore(objects)).Resolve(ctx, 10, 2026)
	assert.ErrorIs(t, err, domain.ErrMetadataUnavailable)
}

func TestPinImage(t *testing.T) {
	objects := newFakeObjects()
	store := testStore(objects)

	url, err := store.PinImage(context.Background(), "My Badge.PNG", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example/metadata/"), url)

	images := objects.keys("images/")
	require.Len(t, images, 1)
	assert.True(t, strings.HasSuffix(images[0], "-my-badge.png"), images[0])
	assert.Equal(t, "png-bytes", string(objects.objects[images[0]]))
	assert.Equal(t, "image/png", objects.types[images[0]])

	var doc ARC3
	key := strings.TrimPrefix(url, "https://cdn.example/")
	require.NoError(t, json.Unmarshal(objects.objects[key], &doc))
	assert.Equal(t, "https://cdn.example/"+images[0], doc.Image)
}

func TestPinImage_Empty(t *testing.T) {
	_, err := testStore(newFakeObjects()).PinImage(context.Background(), "a.png", "image/png", strings.NewReader(""))
	assert.Error(t, err)
}
