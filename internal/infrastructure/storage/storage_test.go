package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() CampaignState {
	return CampaignState{
		Seed:       42,
		Round:      7,
		GlobalTurn: 31,
		Units: []UnitRecord{
			{ID: "u1", Name: "Aria", Kind: "HERO", Props: json.RawMessage(`{"health":{"value":80}}`)},
			{ID: "u2", Name: "Gnarl", Kind: "BEAST", Props: json.RawMessage(`{"health":{"value":0}}`)},
		},
		Diary: []DiaryRecord{
			{Round: 1, Turn: 1, ActorID: "u1", ActorName: "Aria", GoalID: "Explore", Action: "explore", Text: "Aria wanders.", Timestamp: 100},
			{Round: 1, Turn: 2, ActorID: "u2", ActorName: "Gnarl", GoalID: "AttackEnemy", Action: "attack", Text: "Gnarl lunges.", Timestamp: 101},
		},
	}
}

func TestCampaignStore_SaveLoadRoundTrip(t *testing.T) {
	store, err := OpenCampaignStore(filepath.Join(t.TempDir(), "campaign.db"))
	require.NoError(t, err)
	defer store.Close()

	want := sampleState()
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want.Seed, got.Seed)
	assert.Equal(t, want.Round, got.Round)
	assert.Equal(t, want.GlobalTurn, got.GlobalTurn)
	assert.Greater(t, got.SavedAt, int64(0))
	assert.Equal(t, want.Units, got.Units)
	assert.Equal(t, want.Diary, got.Diary, "diary order preserved")
}

func TestCampaignStore_LoadEmptyIsErrNoCampaign(t *testing.T) {
	store, err := OpenCampaignStore(filepath.Join(t.TempDir(), "campaign.db"))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoCampaign)
}

func TestCampaignStore_SaveReplacesPreviousState(t *testing.T) {
	store, err := OpenCampaignStore(filepath.Join(t.TempDir(), "campaign.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(sampleState()))

	later := sampleState()
	later.Round = 12
	later.Units = later.Units[:1]
	require.NoError(t, store.Save(later))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 12, got.Round)
	assert.Len(t, got.Units, 1)
}

func TestChronicle_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "campaign.chronicle.zst")
	want := Chronicle{
		Seed:      42,
		Rounds:    7,
		Timestamp: 1700000000,
		Entries:   sampleState().Diary,
	}
	require.NoError(t, SaveChronicle(path, want))

	got, err := LoadChronicle(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadChronicle_MissingFile(t *testing.T) {
	_, err := LoadChronicle(filepath.Join(t.TempDir(), "nope.zst"))
	assert.Error(t, err)
}

func TestLoadChronicle_CorruptData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.zst")
	require.NoError(t, os.WriteFile(path, []byte("not zstd at all"), 0o644))

	_, err := LoadChronicle(path)
	assert.Error(t, err)
}
