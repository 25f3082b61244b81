package records_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientbook/model"
	"clientbook/records"
	"clientbook/store"
)

func names(customers []model.Customer) []string {
	out := make([]string, 0, len(customers))
	for _, c := range customers {
		out = append(out, c.FullName)
	}
	return out
}

func seedPeople(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()
	for _, p := range []struct {
		name, contact, notes, day string
	}{
		{"Ivan Petrov", "ivan@mail.com", "VIP client", "2024-01-01"},
		{"Maria Ivanova", "+7 900 123", "", "2024-01-15"},
		{"John Smith", "john@corp.com", "prefers email", "2024-01-31"},
		{"Émile Zola", "emile@lit.fr", "vip since 2020", "2024-02-01"},
	} {
		repo := records.NewRepository(session(t, st), records.WithClock(fixedClock(p.day)))
		_, err := repo.CreateCustomer(ctx, p.name, p.contact, p.notes)
		require.NoError(t, err)
	}
}

func TestSearchByName(t *testing.T) {
	forEachStore(t, func(t *testing.T, st store.Store) {
		seedPeople(t, st)
		s := records.NewSearch(session(t, st))
		ctx := context.Background()

		got, err := s.ByName(ctx, "ivan")
		require.NoError(t, err)
		assert.Equal(t, []string{"Ivan Petrov", "Maria Ivanova"}, names(got))

		got, err = s.ByName(ctx, "ÉMILE")
		require.NoError(t, err)
		assert.Equal(t, []string{"Émile Zola"}, names(got))

		got, err = s.ByName(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestSearchByContactAndNotes(t *testing.T) {
	forEachStore(t, func(t *testing.T, st store.Store) {
		seedPeople(t, st)
		s := records.NewSearch(session(t, st))
		ctx := context.Background()

		got, err := s.ByContact(ctx, "@CORP")
		require.NoError(t, err)
		assert.Equal(t, []string{"John Smith"}, names(got))

		got, err = s.ByNotes(ctx, "VIP")
		require.NoError(t, err)
		assert.Equal(t, []string{"Ivan Petrov", "Émile Zola"}, names(got))

		// customers without notes never match, even an empty query
		got, err = s.ByNotes(ctx, "")
		require.NoError(t, err)
		assert.NotContains(t, names(got), "Maria Ivanova")
		assert.Len(t, got, 3)
	})
}

func TestSearchEveryCustomerFindsItself(t *testing.T) {
	forEachStore(t, func(t *testing.T, st store.Store) {
		seedPeople(t, st)
		ctx := context.Background()
		sess := session(t, st)
		all, err := records.NewRepository(sess).GetCustomers(ctx)
		require.NoError(t, err)
		s := records.NewSearch(sess)
		for _, c := range all {
			got, err := s.ByName(ctx, string([]rune(c.FullName)[1:4]))
			require.NoError(t, err)
			assert.Contains(t, names(got), c.FullName)
		}
	})
}

func TestSearchByRegistrationDate(t *testing.T) {
	forEachStore(t, func(t *testing.T, st store.Store) {
		seedPeople(t, st)
		s := records.NewSearch(session(t, st))
		ctx := context.Background()

		r, err := model.ParseDateRange("2024-01-01", "2024-01-31")
		require.NoError(t, err)
		got, err := s.ByRegistrationDate(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, []string{"Ivan Petrov", "Maria Ivanova", "John Smith"}, names(got))

		r, err = model.ParseDateRange("2024-01-15", "2024-01-15")
		require.NoError(t, err)
		got, err = s.ByRegistrationDate(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, []string{"Maria Ivanova"}, names(got))

		r, err = model.ParseDateRange("2023-01-01", "2023-12-31")
		require.NoError(t, err)
		got, err = s.ByRegistrationDate(ctx, r)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestSearchIvanMariaScenario(t *testing.T) {
	forEachStore(t, func(t *testing.T, st store.Store) {
		ctx := context.Background()
		repo := newRepo(t, st)
		a, err := repo.CreateCustomer(ctx, "Ivan Petrov", "+7-000", "")
		require.NoError(t, err)
		b, err := repo.CreateCustomer(ctx, "Maria Ivanova", "+7-111", "VIP")
		require.NoError(t, err)

		s := records.NewSearch(session(t, st))
		vip, err := s.ByNotes(ctx, "VIP")
		require.NoError(t, err)
		require.Len(t, vip, 1)
		assert.Equal(t, b.ID, vip[0].ID)

		ivan, err := s.ByName(ctx, "ivan")
		require.NoError(t, err)
		require.Len(t, ivan, 2)
		assert.Equal(t, []uint{a.ID, b.ID}, []uint{ivan[0].ID, ivan[1].ID})
	})
}

func TestSearchDateBoundsAreInclusive(t *testing.T) {
	forEachStore(t, func(t *testing.T, st store.Store) {
		ctx := context.Background()
		for _, day := range []string{"2024-05-01", "2024-05-10"} {
			repo := records.NewRepository(session(t, st), records.WithClock(fixedClock(day)))
			_, err := repo.CreateCustomer(ctx, "On "+day, "x", "")
			require.NoError(t, err)
		}
		r, err := model.ParseDateRange("2024-05-01", "2024-05-10")
		require.NoError(t, err)
		got, err := records.NewSearch(session(t, st)).ByRegistrationDate(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, []string{"On 2024-05-01", "On 2024-05-10"}, names(got))
	})
}
