package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Dosada05/rating-system/models"
	"github.com/Dosada05/rating-system/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	uploads map[string][]byte
	err     error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: make(map[string][]byte)}
}

func (f *fakeUploader) Upload(_ context.Context, key, _ string, reader io.Reader) (*storage.UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.uploads[key] = data
	return &storage.UploadResult{Key: key, Location: "https://cdn.example/" + key}, nil
}

func (f *fakeUploader) Delete(_ context.Context, key string) error {
	delete(f.uploads, key)
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example/" + key
}

func TestSnapshotGuildUploadsOrderedJSON(t *testing.T) {
	env := newTestEnv()
	env.comps.seed(defaultCompetition(testGuild))
	env.seedPlayer(testGuild, 1, 30)
	env.seedPlayer(testGuild, 2, 90)
	uploader := newFakeUploader()
	svc := NewSnapshotService(env.comps, env.players, uploader, env.logger)

	result, err := svc.SnapshotGuild(context.Background(), testGuild)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Key, "snapshots/900100/"))
	assert.True(t, strings.HasSuffix(result.Key, ".json"))

	var snapshot models.LeaderboardSnapshot
	require.NoError(t, json.Unmarshal(uploader.uploads[result.Key], &snapshot))
	assert.Equal(t, testGuild, snapshot.GuildID)
	require.Len(t, snapshot.Entries, 2)
	assert.Equal(t, int64(2), snapshot.Entries[0].UserID)
	assert.Equal(t, 1, snapshot.Entries[0].Position)
	assert.Equal(t, int64(1), snapshot.Entries[1].UserID)
}

func TestSnapshotAllContinuesPastFailures(t *testing.T) {
	env := newTestEnv()
	env.comps.seed(defaultCompetition(testGuild))
	env.comps.seed(defaultCompetition(testGuild + 1))
	uploader := newFakeUploader()
	uploader.err = errors.New("bucket unavailable")
	svc := NewSnapshotService(env.comps, env.players, uploader, env.logger)

	err := svc.SnapshotAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 2")
}
