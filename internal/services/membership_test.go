package services

import (
	"context"
	"errors"
	"testing"

	"github.com/cineflix/videogate-bot/internal/repo"
)

func seedChannels(t *testing.T, svc *MembershipService) {
	t.Helper()
	ctx := context.Background()
	if _, err := repo.CreateChannel(ctx, svc.DB, "@first", -101, "First"); err != nil {
		t.Fatalf("seed first: %v", err)
	}
	if _, err := repo.CreateChannel(ctx, svc.DB, "@second", -102, "Second"); err != nil {
		t.Fatalf("seed second: %v", err)
	}
}

func TestCheckAll_AllJoined(t *testing.T) {
	db := newTestDB(t)
	bot := newFakeBot()
	svc := NewMembershipService(db, bot)
	seedChannels(t, svc)

	bot.memberStatus[-101] = "member"
	bot.memberStatus[-102] = "administrator"

	v, err := svc.CheckAll(context.Background(), 1)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !v.AllJoined {
		t.Fatalf("expected all joined: %+v", v)
	}
	if len(v.Channels) != 2 || v.Channels[0].Username != "@first" || v.Channels[1].Username != "@second" {
		t.Fatalf("channels out of order: %+v", v.Channels)
	}
}

func TestCheckAll_OneMissing(t *testing.T) {
	db := newTestDB(t)
	bot := newFakeBot()
	svc := NewMembershipService(db, bot)
	seedChannels(t, svc)

	bot.memberStatus[-101] = "creator"
	bot.memberStatus[-102] = "left"

	v, err := svc.CheckAll(context.Background(), 1)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if v.AllJoined {
		t.Fatal("expected gate to stay closed")
	}
	if !v.Channels[0].Joined || v.Channels[1].Joined {
		t.Fatalf("per-channel flags wrong: %+v", v.Channels)
	}
}

func TestCheckAll_LookupErrorFailsClosed(t *testing.T) {
	db := newTestDB(t)
	bot := newFakeBot()
	svc := NewMembershipService(db, bot)
	seedChannels(t, svc)

	bot.memberStatus[-101] = "member"
	bot.memberErr[-102] = errors.New("api down")

	v, err := svc.CheckAll(context.Background(), 1)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if v.AllJoined {
		t.Fatal("lookup failure must count as not joined")
	}
}

func TestCheckAll_NoChannels(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db, newFakeBot())

	v, err := svc.CheckAll(context.Background(), 1)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !v.AllJoined || len(v.Channels) != 0 {
		t.Fatalf("empty roster should pass: %+v", v)
	}
}
