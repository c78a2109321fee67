package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/grand-theater/internal/model"
)

func dune() model.NewMovie {
	return model.NewMovie{
		Title:       "Dune",
		Description: "d",
		PosterURL:   "p",
		Rating:      "PG-13",
		Duration:    155,
	}
}

func newShowtime(movieID uint64, at time.Time, price float64) model.NewShowtime {
	return model.NewShowtime{MovieID: movieID, Showtime: &at, Price: price}
}

func TestMemStorageScenario(t *testing.T) {
	ctx := context.Background()
	s := NewMemStorage()

	m1, _ := s.CreateMovie(ctx, dune())
	if m1.ID != 1 {
		t.Fatalf("first movie id = %d, want 1", m1.ID)
	}
	m2, _ := s.CreateMovie(ctx, dune())
	if m2.ID != 2 {
		t.Fatalf("second movie id = %d, want 2", m2.ID)
	}

	at := time.Date(2025, 1, 1, 14, 0, 0, 0, time.UTC)
	st, _ := s.CreateShowtime(ctx, newShowtime(1, at, 12.99))
	if st.ID != 1 {
		t.Fatalf("first showtime id = %d, want 1", st.ID)
	}

	byMovie1, _ := s.ListShowtimesByMovie(ctx, 1)
	if len(byMovie1) != 1 || byMovie1[0] != st {
		t.Fatalf("ListShowtimesByMovie(1) = %+v, want [%+v]", byMovie1, st)
	}
	byMovie2, _ := s.ListShowtimesByMovie(ctx, 2)
	if byMovie2 == nil || len(byMovie2) != 0 {
		t.Fatalf("ListShowtimesByMovie(2) = %#v, want empty slice", byMovie2)
	}

	price := 15.00
	updated, err := s.UpdateShowtime(ctx, 1, model.ShowtimePatch{Price: &price})
	if err != nil {
		t.Fatalf("UpdateShowtime: %v", err)
	}
	if updated.Price != 15.00 || updated.MovieID != 1 || updated.ID != 1 || !updated.Showtime.Equal(at) {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if err := s.DeleteShowtime(ctx, 1); err != nil {
		t.Fatalf("DeleteShowtime: %v", err)
	}
	if err := s.DeleteShowtime(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second DeleteShowtime err = %v, want ErrNotFound", err)
	}
}

func TestMemStorageIDsIncreasePerKind(t *testing.T) {
	ctx := context.Background()
	s := NewMemStorage()

	var lastMovie, lastShowtime uint64
	for i := 0; i < 5; i++ {
		m, _ := s.CreateMovie(ctx, dune())
		if m.ID <= lastMovie {
			t.Fatalf("movie id %d not greater than %d", m.ID, lastMovie)
		}
		lastMovie = m.ID

		st, _ := s.CreateShowtime(ctx, newShowtime(m.ID, time.Now(), 5))
		if st.ID <= lastShowtime {
			t.Fatalf("showtime id %d not greater than %d", st.ID, lastShowtime)
		}
		lastShowtime = st.ID
	}

	c, _ := s.CreateContact(ctx, model.NewContact{Name: "a", Email: "a@b.co", Message: "m"})
	if c.ID != 1 {
		t.Fatalf("contact sequence should be independent, got id %d", c.ID)
	}
}

func TestMemStorageIDsNotReusedAfterDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemStorage()
	a, _ := s.CreateShowtime(ctx, newShowtime(1, time.Now(), 1))
	b, _ := s.CreateShowtime(ctx, newShowtime(1, time.Now(), 1))
	if err := s.DeleteShowtime(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	c, _ := s.CreateShowtime(ctx, newShowtime(1, time.Now(), 1))
	if c.ID != 3 {
		t.Fatalf("id after delete = %d, want 3", c.ID)
	}

	all, _ := s.ListShowtimes(ctx)
	if len(all) != 2 || all[0].ID != a.ID || all[1].ID != c.ID {
		t.Fatalf("ListShowtimes = %+v", all)
	}
}

func TestMemStorageFilterPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemStorage()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	movies := []uint64{1, 2, 1, 3, 1, 2}
	for i, m := range movies {
		s.CreateShowtime(ctx, newShowtime(m, base.Add(time.Duration(i)*time.Hour), 10))
	}

	all, _ := s.ListShowtimes(ctx)
	for _, movieID := range []uint64{1, 2, 3, 4} {
		got, _ := s.ListShowtimesByMovie(ctx, movieID)
		var want []model.Showtime
		for _, st := range all {
			if st.MovieID == movieID {
				want = append(want, st)
			}
		}
		if len(got) != len(want) {
			t.Fatalf("movie %d: got %d showtimes, want %d", movieID, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("movie %d: position %d = %+v, want %+v", movieID, i, got[i], want[i])
			}
		}
	}
}

func TestMemStorageUnknownIDLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	s := NewMemStorage()
	st, _ := s.CreateShowtime(ctx, newShowtime(1, time.Now().UTC(), 8))

	price := 99.0
	if _, err := s.UpdateShowtime(ctx, 42, model.ShowtimePatch{Price: &price}); !errors.Is(err, ErrShowtimeNotFound) {
		t.Fatalf("UpdateShowtime err = %v, want ErrShowtimeNotFound", err)
	}
	if err := s.DeleteShowtime(ctx, 42); !errors.Is(err, ErrShowtimeNotFound) {
		t.Fatalf("DeleteShowtime err = %v, want ErrShowtimeNotFound", err)
	}
	all, _ := s.ListShowtimes(ctx)
	if len(all) != 1 || all[0] != st {
		t.Fatalf("state changed: %+v", all)
	}
}

func TestMemStorageEmptyPatchKeepsRecord(t *testing.T) {
	ctx := context.Background()
	s := NewMemStorage()
	st, _ := s.CreateShowtime(ctx, newShowtime(2, time.Now().UTC(), 7.5))
	got, err := s.UpdateShowtime(ctx, st.ID, model.ShowtimePatch{})
	if err != nil || got != st {
		t.Fatalf("UpdateShowtime(empty) = %+v, %v; want %+v", got, err, st)
	}
}

func TestMemStorageGetMovieAbsent(t *testing.T) {
	s := NewMemStorage()
	_, found, err := s.GetMovie(context.Background(), 1)
	if found || err != nil {
		t.Fatalf("GetMovie on empty store = found %v, err %v", found, err)
	}
}

func TestMemStorageContactCreatedAt(t *testing.T) {
	s := NewMemStorage()
	fixed := time.Date(2025, 5, 5, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	c, _ := s.CreateContact(context.Background(), model.NewContact{Name: "n", Email: "n@x.io", Message: "m"})
	if !c.CreatedAt.Equal(fixed) {
		t.Fatalf("CreatedAt = %v, want %v", c.CreatedAt, fixed)
	}
}

func TestMemStorageConcurrentCreatesGetUniqueIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemStorage()
	const workers, perWorker = 8, 50

	ids := make(chan uint64, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				st, _ := s.CreateShowtime(ctx, newShowtime(1, time.Now(), 1))
				ids <- st.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != workers*perWorker {
		t.Fatalf("got %d ids, want %d", len(seen), workers*perWorker)
	}
}

func TestSeedLoadsFixtures(t *testing.T) {
	ctx := context.Background()
	s := NewMemStorage()
	day := time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)
	if seeded, err := Seed(ctx, s, day); err != nil || !seeded {
		t.Fatalf("Seed = %v, %v", seeded, err)
	}

	movies, _ := s.ListMovies(ctx)
	if len(movies) != len(FixtureMovies) {
		t.Fatalf("seeded %d movies, want %d", len(movies), len(FixtureMovies))
	}
	for i, m := range movies {
		if m.ID != uint64(i+1) || m.Title != FixtureMovies[i].Title {
			t.Fatalf("movie %d = %+v", i, m)
		}
	}

	all, _ := s.ListShowtimes(ctx)
	nowShowing := 0
	for _, m := range movies {
		got, _ := s.ListShowtimesByMovie(ctx, m.ID)
		if m.IsComingSoon && len(got) != 0 {
			t.Fatalf("coming soon movie %q has showtimes", m.Title)
		}
		if !m.IsComingSoon {
			nowShowing++
			if len(got) != 2*len(fixtureSlots) {
				t.Fatalf("movie %q has %d showtimes", m.Title, len(got))
			}
		}
	}
	if len(all) != nowShowing*2*len(fixtureSlots) {
		t.Fatalf("total showtimes = %d", len(all))
	}
	first := all[0].Showtime
	if want := time.Date(2025, 4, 10, 14, 0, 0, 0, time.UTC); !first.Equal(want) {
		t.Fatalf("first showtime at %v, want %v", first, want)
	}
}

func TestSeedSkipsPopulatedStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemStorage()
	day := time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)
	if _, err := Seed(ctx, s, day); err != nil {
		t.Fatal(err)
	}
	seeded, err := Seed(ctx, s, day)
	if err != nil || seeded {
		t.Fatalf("second Seed = %v, %v; want false, nil", seeded, err)
	}
	movies, _ := s.ListMovies(ctx)
	if len(movies) != len(FixtureMovies) {
		t.Fatalf("second Seed duplicated the catalog: %d movies", len(movies))
	}
}

func TestMemStorageCreatedShowtimeMatchesListed(t *testing.T) {
	ctx := context.Background()
	s := NewMemStorage()
	at := time.Date(2025, 1, 1, 14, 0, 0, 500_000_000, time.UTC)
	created, _ := s.CreateShowtime(ctx, newShowtime(1, at, 12.999))

	all, _ := s.ListShowtimes(ctx)
	if len(all) != 1 || all[0] != created {
		t.Fatalf("listed %+v, created %+v", all, created)
	}
	if created.Price != 13 || created.Showtime.Nanosecond() != 0 {
		t.Fatalf("created record kept sub-cent or sub-second precision: %+v", created)
	}
}
