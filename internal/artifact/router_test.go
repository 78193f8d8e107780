package artifact_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/buildgridgo/internal/artifact"
	"github.com/vk/buildgridgo/internal/dispatch"
	"github.com/vk/buildgridgo/internal/extract"
	"github.com/vk/buildgridgo/internal/matrix"
	"github.com/vk/buildgridgo/internal/testutil"
)

func successResult(identity string) dispatch.Result {
	return dispatch.Result{
		Identity: identity,
		Cell: matrix.NewCell(map[string]string{
			"target":     "server",
			"profile":    "release",
			"featureset": "full",
		}),
		State:  dispatch.StateSucceeded,
		Handle: "image:" + identity,
	}
}

type fixture struct {
	router *artifact.Router
	images *testutil.FakeImages
	store  *testutil.MemStore
	pages  *testutil.MemPages
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	images := &testutil.FakeImages{
		Files: map[string]map[string][]byte{
			"image:server/release/full": {
				"out.bin":     []byte("binary-content"),
				"/app/server": []byte("server-binary"),
			},
		},
	}
	store := &testutil.MemStore{}
	pages := &testutil.MemPages{}
	return &fixture{
		router: &artifact.Router{
			Staging: t.TempDir(),
			Images:  images,
			Files:   extract.LocalFiles{},
			Store:   store,
			Pages:   pages,
		},
		images: images,
		store:  store,
		pages:  pages,
	}
}

func TestRouteDefaultSpecUsesImageFileStrategy(t *testing.T) {
	fx := newFixture(t)

	// No source, no explicit strategy: inner-file extraction with the
	// source defaulting to the destination name.
	spec := &artifact.Spec{Destination: "out.bin"}
	outcome := fx.router.Route(context.Background(), successResult("server/release/full"), spec)

	require.NoError(t, outcome.Err)
	assert.Equal(t, artifact.StagePublished, outcome.Stage)

	content, ok := fx.store.Object("release-full/out.bin")
	require.True(t, ok)
	assert.Equal(t, []byte("binary-content"), content)

	// Published once under the generic channel, never under the site channel.
	assert.Equal(t, 1, fx.store.Len())
	assert.Equal(t, 0, fx.pages.Len())
}

func TestRoutePagesSpecPublishesBothChannels(t *testing.T) {
	fx := newFixture(t)
	fx.images.Files["image:server/release/full"]["site"] = []byte("site-v1")

	spec := &artifact.Spec{Destination: "site", Pages: true}
	result := successResult("server/release/full")

	outcome := fx.router.Route(context.Background(), result, spec)
	require.NoError(t, outcome.Err)
	assert.Equal(t, artifact.StageSitePublished, outcome.Stage)

	_, ok := fx.store.Object("release-full/site")
	assert.True(t, ok)
	content, ok := fx.pages.Object("site")
	require.True(t, ok)
	assert.Equal(t, []byte("site-v1"), content)

	// A second publish overwrites the prior site content.
	fx.images.Files["image:server/release/full"]["site"] = []byte("site-v2")
	outcome = fx.router.Route(context.Background(), result, spec)
	require.NoError(t, outcome.Err)

	content, _ = fx.pages.Object("site")
	assert.Equal(t, []byte("site-v2"), content)
	assert.Equal(t, 2, fx.pages.Publishes("site"))
	assert.Equal(t, 1, fx.pages.Len())
}

func TestRouteSkips(t *testing.T) {
	fx := newFixture(t)

	t.Run("failed build", func(t *testing.T) {
		result := successResult("server/release/full")
		result.State = dispatch.StateFailed
		outcome := fx.router.Route(context.Background(), result, &artifact.Spec{Destination: "out.bin"})
		assert.Equal(t, artifact.StageSkipped, outcome.Stage)
		assert.NoError(t, outcome.Err)
	})

	t.Run("cancelled build", func(t *testing.T) {
		result := successResult("server/release/full")
		result.State = dispatch.StateCancelled
		outcome := fx.router.Route(context.Background(), result, &artifact.Spec{Destination: "out.bin"})
		assert.Equal(t, artifact.StageSkipped, outcome.Stage)
	})

	t.Run("no spec for target", func(t *testing.T) {
		outcome := fx.router.Route(context.Background(), successResult("server/release/full"), nil)
		assert.Equal(t, artifact.StageSkipped, outcome.Stage)
	})

	assert.Equal(t, 0, fx.store.Len())
}

func TestRouteMissingImagePathIsExtractionError(t *testing.T) {
	fx := newFixture(t)

	spec := &artifact.Spec{Destination: "nope.bin"}
	outcome := fx.router.Route(context.Background(), successResult("server/release/full"), spec)

	assert.Equal(t, artifact.StageNone, outcome.Stage)
	var extErr *artifact.ExtractionError
	require.ErrorAs(t, outcome.Err, &extErr)
	assert.Equal(t, "nope.bin", extErr.Source)
	assert.Equal(t, 0, fx.store.Len())
}

func TestRouteWholeImageIgnoresSource(t *testing.T) {
	fx := newFixture(t)

	spec := &artifact.Spec{
		Destination: "server.tar",
		Source:      "/ignored/path",
		Strategy:    artifact.StrategyWholeImage,
	}
	outcome := fx.router.Route(context.Background(), successResult("server/release/full"), spec)

	require.NoError(t, outcome.Err)
	assert.Equal(t, artifact.StagePublished, outcome.Stage)
	assert.Equal(t, []string{"image:server/release/full"}, fx.images.Saves())

	content, ok := fx.store.Object("release-full/server.tar")
	require.True(t, ok)
	assert.Equal(t, []byte("image-archive:image:server/release/full"), content)
}

func TestRouteRunnerFile(t *testing.T) {
	fx := newFixture(t)

	t.Run("moves a local file", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "report.txt")
		require.NoError(t, os.WriteFile(src, []byte("local"), 0o644))

		spec := &artifact.Spec{
			Destination: "report.txt",
			Source:      src,
			Strategy:    artifact.StrategyRunnerFile,
		}
		outcome := fx.router.Route(context.Background(), successResult("server/release/full"), spec)
		require.NoError(t, outcome.Err)
		assert.Equal(t, artifact.StagePublished, outcome.Stage)

		// The source was moved, not copied.
		_, err := os.Stat(src)
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("absent local file is an ExtractionError", func(t *testing.T) {
		spec := &artifact.Spec{
			Destination: "report.txt",
			Source:      filepath.Join(t.TempDir(), "missing.txt"),
			Strategy:    artifact.StrategyRunnerFile,
		}
		outcome := fx.router.Route(context.Background(), successResult("server/release/full"), spec)

		var extErr *artifact.ExtractionError
		assert.ErrorAs(t, outcome.Err, &extErr)
	})
}

func TestRoutePublicationFailureIsTerminalForJobOnly(t *testing.T) {
	fx := newFixture(t)
	fx.store.Err = errors.New("store unreachable")

	spec := &artifact.Spec{Destination: "out.bin", Pages: true}
	outcome := fx.router.Route(context.Background(), successResult("server/release/full"), spec)

	assert.Equal(t, artifact.StageExtracted, outcome.Stage)
	var pubErr *artifact.PublicationError
	require.ErrorAs(t, outcome.Err, &pubErr)
	assert.Equal(t, "generic", pubErr.Channel)

	// Site publication is not attempted after a generic-channel failure.
	assert.Equal(t, 0, fx.pages.Len())
}

func TestRoutePagesFailureKeepsPublishedStage(t *testing.T) {
	fx := newFixture(t)
	fx.pages.Err = errors.New("site down")

	spec := &artifact.Spec{Destination: "out.bin", Pages: true}
	outcome := fx.router.Route(context.Background(), successResult("server/release/full"), spec)

	assert.Equal(t, artifact.StagePublished, outcome.Stage)
	var pubErr *artifact.PublicationError
	require.ErrorAs(t, outcome.Err, &pubErr)
	assert.Equal(t, "site", pubErr.Channel)
}

func TestRouteLeavesNoPartialFiles(t *testing.T) {
	fx := newFixture(t)

	spec := &artifact.Spec{Destination: "out.bin"}
	outcome := fx.router.Route(context.Background(), successResult("server/release/full"), spec)
	require.NoError(t, outcome.Err)

	err := filepath.WalkDir(fx.router.Staging, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		assert.False(t, strings.HasSuffix(path, ".partial"), "partial file left behind: %s", path)
		return nil
	})
	require.NoError(t, err)
}
