package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"ampere/internal/model"
)

func TestParseFavoriteArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    FavoriteArgs
		wantErr bool
	}{
		{
			name: "league",
			args: "league NBA",
			want: FavoriteArgs{Kind: model.FavoriteLeague, Value: "NBA"},
		},
		{
			name: "multi-word team",
			args: "team  Kansas City   Chiefs",
			want: FavoriteArgs{Kind: model.FavoriteTeam, Value: "Kansas City Chiefs"},
		},
		{
			name: "platform resolves to id",
			args: "Platform ESPN",
			want: FavoriteArgs{Kind: model.FavoritePlatform, Value: "espn"},
		},
		{
			name:    "unknown platform",
			args:    "platform betamax",
			wantErr: true,
		},
		{
			name:    "unknown kind",
			args:    "genre drama",
			wantErr: true,
		},
		{
			name:    "missing value",
			args:    "league",
			wantErr: true,
		},
		{
			name:    "empty args",
			args:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFavoriteArgs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseFavoriteArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSwitch(t *testing.T) {
	tests := []struct {
		args    string
		want    bool
		wantErr bool
	}{
		{args: "on", want: true},
		{args: " OFF ", want: false},
		{args: "yes", want: true},
		{args: "false", want: false},
		{args: "maybe", wantErr: true},
		{args: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			got, err := ParseSwitch(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseSwitch(%q) mismatch (-want +got):\n%s", tt.args, diff)
			}
		})
	}
}

func TestParseDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    string
		wantErr bool
	}{
		{name: "collapses spaces", args: "  Ada   Lovelace ", want: "Ada Lovelace"},
		{name: "empty", args: "   ", wantErr: true},
		{name: "too long", args: strings.Repeat("x", 65), wantErr: true},
		{name: "unicode counted by rune", args: strings.Repeat("é", 64), want: strings.Repeat("é", 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDisplayName(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseDisplayName() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePlatformArg(t *testing.T) {
	p, err := ParsePlatformArg(" Netflix ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff("netflix", p.ID); diff != "" {
		t.Errorf("platform id mismatch (-want +got):\n%s", diff)
	}

	for _, args := range []string{"", "betamax"} {
		if _, err := ParsePlatformArg(args); err == nil {
			t.Errorf("ParsePlatformArg(%q) expected error", args)
		}
	}
}

func TestFormatCards(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		got := FormatCards("Live now", nil)
		if diff := cmp.Diff("Live now\n\nNothing to show right now.", got); diff != "" {
			t.Errorf("FormatCards() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("numbered with meta", func(t *testing.T) {
		cards := []model.Card{
			{Title: "Chiefs vs Bills", PlatformID: "espn", League: "NFL", Badge: model.BadgeLive},
			{Title: "The Long Season", Genre: "Documentary"},
		}
		want := "Live now\n" +
			"\n1. [LIVE] Chiefs vs Bills\n   ESPN+ | NFL\n" +
			"\n2. The Long Season\n   Documentary\n"
		if diff := cmp.Diff(want, FormatCards("Live now", cards)); diff != "" {
			t.Errorf("FormatCards() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestFormatCard(t *testing.T) {
	tests := []struct {
		name string
		card model.Card
		want string
	}{
		{
			name: "full card",
			card: model.Card{
				Title:      "Lakers at Celtics",
				Subtitle:   "Rivalry night",
				PlatformID: "espn",
				League:     "NBA",
				Badge:      model.BadgeUpcoming,
				URL:        "https://example.com/watch",
			},
			want: "[UPCOMING] Lakers at Celtics\nESPN+ | NBA\n\nRivalry night\n\nhttps://example.com/watch",
		},
		{
			name: "title only",
			card: model.Card{Title: "Plain"},
			want: "Plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, FormatCard(tt.card)); diff != "" {
				t.Errorf("FormatCard() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatLiveNotification(t *testing.T) {
	got := FormatLiveNotification(model.Card{Title: "Derby", Badge: model.BadgeLive})
	if diff := cmp.Diff("Live now for you\n\n[LIVE] Derby", got); diff != "" {
		t.Errorf("FormatLiveNotification() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatRails(t *testing.T) {
	rails := []model.Rail{
		{Name: "live", Title: "Live now", Notify: true},
		{Name: "movies", Title: "Movies"},
	}
	want := "Rails:\n\nLive now  /rail live  (live alerts)\nMovies  /rail movies"
	if diff := cmp.Diff(want, FormatRails(rails)); diff != "" {
		t.Errorf("FormatRails() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("No rails configured.", FormatRails(nil)); diff != "" {
		t.Errorf("FormatRails(nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatProfile(t *testing.T) {
	p := model.Profile{
		DisplayName:          "Ada",
		FavoritePlatformIDs:  []string{"espn", "local"},
		FavoriteLeagues:      []string{"NBA"},
		FavoriteTeams:        []string{},
		ConnectedPlatformIDs: map[string]bool{"netflix": true, "hulu": false, "dazn": true},
		NotificationsEnabled: false,
	}
	want := "Ada\n" +
		"\nPlatforms: ESPN+, local" +
		"\nLeagues: NBA" +
		"\nTeams: none" +
		"\nConnected: DAZN, Netflix" +
		"\nLive alerts: off"
	if diff := cmp.Diff(want, FormatProfile(p)); diff != "" {
		t.Errorf("FormatProfile() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatHistory(t *testing.T) {
	if diff := cmp.Diff("You have not opened anything yet.", FormatHistory(nil, 10)); diff != "" {
		t.Errorf("FormatHistory(nil) mismatch (-want +got):\n%s", diff)
	}

	at := time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC)
	events := []model.ViewingEvent{
		{ID: "1", Title: "Oldest", At: at},
		{ID: "2", Title: "Middle", PlatformID: "espn", At: at.Add(time.Hour)},
		{ID: "3", Title: "Newest", PlatformID: "espn", League: "NFL", At: at.Add(2 * time.Hour)},
	}
	want := "Recently opened:\n" +
		"\n2026-03-01 20:30  Newest (ESPN+, NFL)" +
		"\n2026-03-01 19:30  Middle (ESPN+)"
	if diff := cmp.Diff(want, FormatHistory(events, 2)); diff != "" {
		t.Errorf("FormatHistory() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatPlatforms(t *testing.T) {
	p := model.Profile{
		FavoritePlatformIDs:  []string{"espn"},
		ConnectedPlatformIDs: map[string]bool{"espn": true, "netflix": true},
	}
	got := FormatPlatforms(p)
	for _, want := range []string{
		"Netflix (netflix) [connected]",
		"ESPN+ (espn) [favorite, connected]",
		"Hulu (hulu)\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatPlatforms() missing %q, got:\n%s", want, got)
		}
	}
}
