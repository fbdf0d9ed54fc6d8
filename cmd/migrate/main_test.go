package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockMigrator struct {
	mock.Mock
}

func (m *MockMigrator) Up() error {
	return m.Called().Error(0)
}

func (m *MockMigrator) Down() error {
	return m.Called().Error(0)
}

func (m *MockMigrator) Version() (uint, bool, error) {
	args := m.Called()
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

func TestRun(t *testing.T) {
	t.Run("Up", func(t *testing.T) {
		m := new(MockMigrator)
		m.On("Up").Return(nil)
		m.On("Version").Return(uint(7), false, nil)

		assert.NoError(t, run(m, "up"))
		m.AssertExpectations(t)
	})

	t.Run("Down", func(t *testing.T) {
		m := new(MockMigrator)
		m.On("Down").Return(nil)
		m.On("Version").Return(uint(0), false, nil)

		assert.NoError(t, run(m, "down"))
		m.AssertExpectations(t)
	})

	t.Run("Version only", func(t *testing.T) {
		m := new(MockMigrator)
		m.On("Version").Return(uint(3), true, nil)

		assert.NoError(t, run(m, "version"))
		m.AssertNotCalled(t, "Up")
		m.AssertNotCalled(t, "Down")
	})

	t.Run("Up failure", func(t *testing.T) {
		m := new(MockMigrator)
		m.On("Up").Return(errors.New("dirty database"))

		err := run(m, "up")

		assert.EqualError(t, err, "dirty database")
		m.AssertNotCalled(t, "Version")
	})

	t.Run("Unknown mode", func(t *testing.T) {
		m := new(MockMigrator)

		err := run(m, "sideways")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown mode")
	})
}
