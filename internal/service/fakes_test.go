package service

import (
	"time"

	"familyglitch/internal/minigame"
	"familyglitch/internal/testutil"
)

// harness wires the services over in-memory stores
type harness struct {
	sessions   *SessionService
	minigames  *MinigameService
	turns      *testutil.TurnRepo
	challenges *testutil.ChallengeCache
	events     *testutil.Broadcaster
	client     *testutil.StubClient
}

func newHarness() *harness {
	h := &harness{
		turns:      &testutil.TurnRepo{},
		challenges: &testutil.ChallengeCache{},
		events:     &testutil.Broadcaster{},
		client:     testutil.NewStubClient("{}"),
	}
	auth := NewAuthService("test-secret", time.Hour)
	h.sessions = NewSessionService(testutil.NewSessionRepo(), h.turns, &testutil.SessionCache{}, &testutil.Leaderboard{}, auth)
	h.sessions.SetBroadcaster(h.events)
	h.minigames = NewMinigameService(h.sessions, h.client, minigame.NewSet(minigame.All()...), h.challenges, &testutil.UsedTurns{}, "test-model")
	h.minigames.SetBroadcaster(h.events)
	return h
}
