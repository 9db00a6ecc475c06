package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Capstone-E1/aquasmart_monitor/internal/models"
	"github.com/Capstone-E1/aquasmart_monitor/internal/monitor"
)

type fixedSource struct {
	mu      sync.Mutex
	reading models.Reading
	calls   int
}

func (f *fixedSource) Next() (models.Reading, models.ReadingSource) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.reading, models.SourceSimulated
}

func (f *fixedSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestParseSensorJSON(t *testing.T) {
	parser := NewSensorParser()

	reading, location, err := parser.ParseSensorJSON([]byte(`{"ph":7.2,"turbidity":2.0,"tds":350,"location":" Indore City "}`))
	require.NoError(t, err)
	assert.Equal(t, models.Reading{Ph: 7.2, Turbidity: 2.0, TDS: 350}, reading)
	assert.Equal(t, "Indore City", location)
}

func TestParseSensorJSON_RejectsOutOfRange(t *testing.T) {
	parser := NewSensorParser()

	_, _, err := parser.ParseSensorJSON([]byte(`{"ph":15,"turbidity":2.0,"tds":350}`))
	assert.Error(t, err)
}

func TestParseSensorString(t *testing.T) {
	parser := NewSensorParser()

	reading, err := parser.ParseSensorString("4.0, 9.0, 1000")
	require.NoError(t, err)
	assert.Equal(t, models.Reading{Ph: 4.0, Turbidity: 9.0, TDS: 1000}, reading)

	_, err = parser.ParseSensorString("4.0,9.0")
	assert.Error(t, err)

	_, err = parser.ParseSensorString("4.0,abc,1000")
	assert.Error(t, err)

	_, err = parser.ParseSensorString("7.0,-1,100")
	assert.Error(t, err)
}

func TestParseSensorString_RejectsNonFiniteAndHugeValues(t *testing.T) {
	parser := NewSensorParser()

	for _, payload := range []string{"NaN,1,100", "7,NaN,100", "7,1,1e300", "7,1,Inf", "7,+Inf,100", "7,1,100001"} {
		_, err := parser.ParseSensorString(payload)
		assert.Error(t, err, payload)
	}

	reading, err := parser.ParseSensorString("7,1,100000")
	require.NoError(t, err)
	assert.Equal(t, 100000, reading.TDS)
}

func TestParseSensorJSON_RejectsHugeTDS(t *testing.T) {
	parser := NewSensorParser()

	_, _, err := parser.ParseSensorJSON([]byte(`{"ph":7,"turbidity":1,"tds":1e300}`))
	assert.Error(t, err)

	_, _, err = parser.Parse([]byte(`{"ph":7,"turbidity":1,"tds":1e300}`))
	assert.Error(t, err)
}

func TestParse_FallsBackToString(t *testing.T) {
	parser := NewSensorParser()

	reading, location, err := parser.Parse([]byte("7.5,1.5,420"))
	require.NoError(t, err)
	assert.Equal(t, 420, reading.TDS)
	assert.Empty(t, location)

	_, _, err = parser.Parse([]byte("garbage"))
	assert.Error(t, err)
}

func TestValidateInterval(t *testing.T) {
	assert.NoError(t, ValidateInterval(2*time.Second))
	assert.NoError(t, ValidateInterval(10*time.Second))
	assert.ErrorIs(t, ValidateInterval(time.Second), ErrInvalidInterval)
	assert.ErrorIs(t, ValidateInterval(11*time.Second), ErrInvalidInterval)
}

func TestScheduler_SetInterval(t *testing.T) {
	scheduler := NewScheduler(monitor.NewSession(), &fixedSource{}, 0)
	assert.Equal(t, DefaultRefreshInterval, scheduler.Interval())

	require.NoError(t, scheduler.SetInterval(6*time.Second))
	assert.Equal(t, 6*time.Second, scheduler.Interval())

	assert.ErrorIs(t, scheduler.SetInterval(30*time.Second), ErrInvalidInterval)
	assert.Equal(t, 6*time.Second, scheduler.Interval())
}

func TestScheduler_RunCycle(t *testing.T) {
	session := monitor.NewSession()
	source := &fixedSource{reading: models.Reading{Ph: 4.0, Turbidity: 9.0, TDS: 1000}}
	scheduler := NewScheduler(session, source, DefaultRefreshInterval)

	eval := scheduler.RunCycle()

	assert.Equal(t, models.TierUnsafe, eval.Tier)
	assert.Len(t, session.Alerts(), 1)
}

func TestScheduler_StartEvaluatesImmediately(t *testing.T) {
	session := monitor.NewSession()
	source := &fixedSource{reading: models.Reading{Ph: 7, Turbidity: 1, TDS: 200}}
	scheduler := NewScheduler(session, source, MaxRefreshInterval)

	scheduler.Start()
	assert.True(t, scheduler.IsRunning())

	assert.Eventually(t, func() bool { return source.Calls() >= 1 }, time.Second, 10*time.Millisecond)

	scheduler.Stop()
	assert.False(t, scheduler.IsRunning())

	_, ok := session.Latest()
	assert.True(t, ok)

	// Stopping twice is harmless
	scheduler.Stop()
}
