// Package storagetest holds the behaviour every storage.Storage engine must
// share. Engine packages call Run from their own tests.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/phone-roster/internal/storage"
)

// SortedNames is the roster in ListAll order (byte-wise by name).
var SortedNames = []string{
	"Abdul Ahad Ali Khan",
	"Abdul Raffay bin Ilyas",
	"Ahmad Saeed Zaidi",
	"Arsalan Khalil",
	"Bushrah Zulfiqar",
	"Hamza Mukhtar",
	"Hamza Saeed",
	"Hashir",
	"Muhammad",
	"Muhammad Hamza khan",
	"Muhammad Rohaan Mirza",
	"Muhammad Umar",
	"Muhammad Umer Farooq",
	"Muhammad Usman Nazir",
	"Nishat Ahmed",
	"Rameen Zia",
	"Riyan khan Durrani",
	"Saad Khurshid",
	"Shumaz saeed",
	"Syeda Masooma Shah",
	"Warisha Arshad",
	"Zain",
}

// Factory returns a fresh, empty, not yet initialised store. The factory
// registers its own cleanup.
type Factory func(t *testing.T) storage.Storage

// Run exercises s against the Record Store contract.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	open := func(t *testing.T) storage.Storage {
		t.Helper()
		s := newStore(t)
		require.NoError(t, s.Initialize(ctx))
		return s
	}

	t.Run("InitializeSeedsRoster", func(t *testing.T) {
		s := open(t)

		students, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, students, storage.RosterSize())
		for _, st := range students {
			assert.Nil(t, st.PhoneNumber, "%s should start without a phone", st.RegNumber)
			assert.Nil(t, st.UpdatedAt, "%s should start without updated_at", st.RegNumber)
		}
	})

	t.Run("InitializeIsIdempotent", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Initialize(ctx))
		require.NoError(t, s.Initialize(ctx))

		students, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, students, storage.RosterSize())

		seen := make(map[string]bool)
		for _, st := range students {
			assert.False(t, seen[st.RegNumber], "duplicate reg %s", st.RegNumber)
			seen[st.RegNumber] = true
		}
	})

	t.Run("InitializeKeepsSubmissions", func(t *testing.T) {
		s := open(t)
		ok, err := s.UpdatePhone(ctx, "2023130", "03001234567")
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, s.Initialize(ctx))

		st, err := s.FindByRegNumber(ctx, "2023130")
		require.NoError(t, err)
		assert.Equal(t, "03001234567", st.Phone())
	})

	t.Run("ListAllOrderedByName", func(t *testing.T) {
		s := open(t)

		students, err := s.ListAll(ctx)
		require.NoError(t, err)

		names := make([]string, 0, len(students))
		for _, st := range students {
			names = append(names, st.Name)
		}
		assert.Equal(t, SortedNames, names)
	})

	t.Run("FindByRegNumber", func(t *testing.T) {
		s := open(t)

		st, err := s.FindByRegNumber(ctx, "2023130")
		require.NoError(t, err)
		assert.Equal(t, "Arsalan Khalil", st.Name)
		assert.Equal(t, "2023130", st.RegNumber)

		_, err = s.FindByRegNumber(ctx, "9999999")
		assert.ErrorIs(t, err, storage.ErrStudentNotFound)
	})

	t.Run("FindOwnerOfPhone", func(t *testing.T) {
		s := open(t)

		_, err := s.FindOwnerOfPhone(ctx, "03001234567")
		assert.ErrorIs(t, err, storage.ErrStudentNotFound)

		ok, err := s.UpdatePhone(ctx, "2023682", "03001234567")
		require.NoError(t, err)
		require.True(t, ok)

		owner, err := s.FindOwnerOfPhone(ctx, "03001234567")
		require.NoError(t, err)
		assert.Equal(t, "Hamza Mukhtar", owner.Name)
		assert.Equal(t, "2023682", owner.RegNumber)
	})

	t.Run("UpdatePhoneSetsPhoneAndTimestamp", func(t *testing.T) {
		s := open(t)

		ok, err := s.UpdatePhone(ctx, "2023130", "03001234567")
		require.NoError(t, err)
		assert.True(t, ok)

		st, err := s.FindByRegNumber(ctx, "2023130")
		require.NoError(t, err)
		require.NotNil(t, st.PhoneNumber)
		assert.Equal(t, "03001234567", *st.PhoneNumber)
		assert.NotNil(t, st.UpdatedAt)
	})

	t.Run("UpdatePhoneUnknownReg", func(t *testing.T) {
		s := open(t)

		ok, err := s.UpdatePhone(ctx, "9999999", "03001234567")
		require.NoError(t, err)
		assert.False(t, ok)

		students, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, students, storage.RosterSize(), "update must never create students")
	})

	t.Run("UpdatePhoneSameNumberTwice", func(t *testing.T) {
		s := open(t)

		for i := 0; i < 2; i++ {
			ok, err := s.UpdatePhone(ctx, "2023130", "03001234567")
			require.NoError(t, err)
			assert.True(t, ok, "attempt %d", i+1)
		}
	})

	t.Run("UpdatePhoneRefusesNumberHeldByOther", func(t *testing.T) {
		s := open(t)

		ok, err := s.UpdatePhone(ctx, "2023130", "03001234567")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = s.UpdatePhone(ctx, "2023682", "03001234567")
		require.NoError(t, err)
		assert.False(t, ok)

		other, err := s.FindByRegNumber(ctx, "2023682")
		require.NoError(t, err)
		assert.Nil(t, other.PhoneNumber)
	})

	t.Run("UpdatePhoneReplacesOwnNumber", func(t *testing.T) {
		s := open(t)

		ok, err := s.UpdatePhone(ctx, "2023130", "03001234567")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = s.UpdatePhone(ctx, "2023130", "03111111111")
		require.NoError(t, err)
		require.True(t, ok)

		_, err = s.FindOwnerOfPhone(ctx, "03001234567")
		assert.ErrorIs(t, err, storage.ErrStudentNotFound, "old number is released")
	})
}
