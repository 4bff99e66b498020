package usecases_test

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"fleet-server/apierrors"
	"fleet-server/confs"
	"fleet-server/entities"
	"fleet-server/usecases"

	"github.com/stretchr/testify/require"
)

// fakeLedger is an in-memory CommandLedger with failure toggles.
type fakeLedger struct {
	lock        sync.Mutex
	rows        []*entities.Command
	nextID      int
	appendErr   error
	latestErr   error
	listErr     error
	completeErr error
}

func (l *fakeLedger) Append(cmd *entities.Command) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.appendErr != nil {
		return l.appendErr
	}
	l.nextID++
	cmd.ID = fmt.Sprintf("cmd-%d", l.nextID)
	stored := *cmd
	l.rows = append(l.rows, &stored)
	return nil
}

func (l *fakeLedger) Latest(robotID string) (*entities.Command, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.latestErr != nil {
		return nil, l.latestErr
	}
	var latest *entities.Command
	for _, row := range l.rows {
		if row.RobotID != robotID {
			continue
		}
		// Later-appended rows win ties, matching insertion order in the store
		if latest == nil || row.TimeIssued >= latest.TimeIssued {
			latest = row
		}
	}
	if latest == nil {
		return nil, apierrors.ErrNotFound
	}
	found := *latest
	return &found, nil
}

func (l *fakeLedger) Incomplete(robotID string) ([]entities.Command, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.listErr != nil {
		return nil, l.listErr
	}
	var pending []entities.Command
	for i := len(l.rows) - 1; i >= 0; i-- {
		if l.rows[i].RobotID == robotID && !l.rows[i].Completed {
			pending = append(pending, *l.rows[i])
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].TimeInstruction > pending[j].TimeInstruction
	})
	return pending, nil
}

func (l *fakeLedger) Complete(id string) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.completeErr != nil {
		return l.completeErr
	}
	for _, row := range l.rows {
		if row.ID == id {
			row.Completed = true
			return nil
		}
	}
	return apierrors.ErrNotFound
}

func (l *fakeLedger) count() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return len(l.rows)
}

func (l *fakeLedger) byID(id string) *entities.Command {
	l.lock.Lock()
	defer l.lock.Unlock()
	for _, row := range l.rows {
		if row.ID == id {
			found := *row
			return &found
		}
	}
	return nil
}

// seed appends a row directly, bypassing the issuance window.
func (l *fakeLedger) seed(t *testing.T, robotID string, in entities.Instruction, issued, instruction int64, completed bool) *entities.Command {
	t.Helper()
	encoded, err := in.Encode()
	require.NoError(t, err)
	cmd := &entities.Command{
		RobotID:         robotID,
		TimeIssued:      issued,
		TimeInstruction: instruction,
		Instruction:     encoded,
		Completed:       completed,
	}
	require.NoError(t, l.Append(cmd))
	l.lock.Lock()
	l.rows[len(l.rows)-1].Completed = completed
	cmd.ID = l.rows[len(l.rows)-1].ID
	l.lock.Unlock()
	return cmd
}

func testSettings() *confs.Settings {
	return &confs.Settings{
		MinimumBatteryLevel:          50,
		TimeIssuedBufferSeconds:      300,
		TimeInstructionBufferSeconds: 600,
	}
}

func newResolver(ledger *fakeLedger) *usecases.PollUseCase {
	cfg := testSettings()
	commands := usecases.NewCommandsUseCase(ledger, cfg)
	return usecases.NewPollUseCase(commands, ledger, cfg)
}

func decoded(t *testing.T, cmd *entities.Command) entities.Instruction {
	t.Helper()
	in, err := cmd.Decoded()
	require.NoError(t, err)
	return in
}

func TestPollNoHistoryIdleIssuesFreshIdle(t *testing.T) {
	ledger := &fakeLedger{}
	resolver := newResolver(ledger)

	cmd, err := resolver.Resolve(&entities.PollRequest{
		RobotID:      "R1",
		Instruction:  entities.Idle(),
		BatteryLevel: 90,
	})
	require.NoError(t, err)
	require.Equal(t, "R1", cmd.RobotID)
	require.False(t, cmd.Completed)
	require.Equal(t, entities.Idle(), decoded(t, cmd))
	require.Equal(t, 1, ledger.count())
}

func TestPollAbortCompletesPreviousAndIssuesAbort(t *testing.T) {
	now := time.Now().Unix()
	ledger := &fakeLedger{}
	prev := ledger.seed(t, "R1", entities.Task(entities.PatternZigZag), now, now, false)
	resolver := newResolver(ledger)

	cmd, err := resolver.Resolve(&entities.PollRequest{
		RobotID:      "R1",
		Instruction:  entities.Abort(entities.AbortObstacle),
		BatteryLevel: 90,
	})
	require.NoError(t, err)
	require.False(t, cmd.Completed)
	require.Equal(t, entities.Abort(entities.AbortObstacle), decoded(t, cmd))
	require.True(t, ledger.byID(prev.ID).Completed)
}

func TestPollTaskContinuationIsIdempotent(t *testing.T) {
	now := time.Now().Unix()
	ledger := &fakeLedger{}
	prev := ledger.seed(t, "R1", entities.Task(entities.PatternZigZag), now, now, false)
	resolver := newResolver(ledger)

	req := &entities.PollRequest{
		RobotID:      "R1",
		Instruction:  entities.Task(entities.PatternZigZag),
		BatteryLevel: 90,
	}

	first, err := resolver.Resolve(req)
	require.NoError(t, err)
	second, err := resolver.Resolve(req)
	require.NoError(t, err)

	require.Equal(t, prev.ID, first.ID)
	require.Equal(t, prev.ID, second.ID)
	require.Equal(t, 1, ledger.count())
}

func TestPollLowBatteryOverridesEverything(t *testing.T) {
	now := time.Now().Unix()
	for _, level := range []int64{0, -5, 40, 50, 101} {
		ledger := &fakeLedger{}
		ledger.seed(t, "R1", entities.Task(entities.PatternZigZag), now, now, false)
		resolver := newResolver(ledger)

		cmd, err := resolver.Resolve(&entities.PollRequest{
			RobotID:      "R1",
			Instruction:  entities.Task(entities.PatternZigZag),
			BatteryLevel: level,
		})
		require.NoError(t, err, "battery level %d", level)
		require.False(t, cmd.Completed)
		require.Equal(t, entities.Abort(entities.AbortLowBattery), decoded(t, cmd), "battery level %d", level)
	}
}

func TestPollTaskSwitchIsUnsupported(t *testing.T) {
	now := time.Now().Unix()
	ledger := &fakeLedger{}
	ledger.seed(t, "R1", entities.Task(entities.PatternZigZag), now, now, false)
	resolver := newResolver(ledger)

	_, err := resolver.Resolve(&entities.PollRequest{
		RobotID:      "R1",
		Instruction:  entities.Task(entities.PatternCircular),
		BatteryLevel: 90,
	})
	require.ErrorIs(t, err, apierrors.ErrUnsupportedTransition)
	require.Equal(t, 1, ledger.count())
}

func TestPollContinueAndPauseAreUnsupported(t *testing.T) {
	now := time.Now().Unix()
	for _, in := range []entities.Instruction{entities.Continue(), entities.Pause()} {
		ledger := &fakeLedger{}
		ledger.seed(t, "R1", entities.Task(entities.PatternZigZag), now, now, false)
		resolver := newResolver(ledger)

		_, err := resolver.Resolve(&entities.PollRequest{
			RobotID:      "R1",
			Instruction:  in,
			BatteryLevel: 90,
		})
		require.ErrorIs(t, err, apierrors.ErrUnsupportedTransition)
		require.Equal(t, 1, ledger.count())
	}
}

func TestPollStalePendingIssuesFreshIdle(t *testing.T) {
	now := time.Now().Unix()
	ledger := &fakeLedger{}
	stale := ledger.seed(t, "R1", entities.Task(entities.PatternZigZag), now-3600, now-3600, false)
	ledger.seed(t, "R1", entities.Idle(), now-60, now-60, true)
	resolver := newResolver(ledger)

	cmd, err := resolver.Resolve(&entities.PollRequest{
		RobotID:      "R1",
		Instruction:  entities.Idle(),
		BatteryLevel: 90,
	})
	require.NoError(t, err)
	require.Equal(t, entities.Idle(), decoded(t, cmd))
	require.NotEqual(t, stale.ID, cmd.ID)
	// The stale head is left alone; it expires, it is not purged
	require.False(t, ledger.byID(stale.ID).Completed)
}

func TestPollIdleReturnsValidPendingHead(t *testing.T) {
	now := time.Now().Unix()
	ledger := &fakeLedger{}
	head := ledger.seed(t, "R1", entities.Task(entities.PatternCircular), now-30, now-30, false)
	// A later completed idle is the robot's "latest", so the queued task is
	// picked up through the pending path rather than the decision table.
	ledger.seed(t, "R1", entities.Idle(), now-10, now-10, true)
	resolver := newResolver(ledger)

	cmd, err := resolver.Resolve(&entities.PollRequest{
		RobotID:      "R1",
		Instruction:  entities.Idle(),
		BatteryLevel: 90,
	})
	require.NoError(t, err)
	require.Equal(t, head.ID, cmd.ID)
	require.Equal(t, entities.Task(entities.PatternCircular), decoded(t, cmd))
	require.Equal(t, 2, ledger.count())
}

func TestPollTaskToIdleCompletesPrevious(t *testing.T) {
	now := time.Now().Unix()
	ledger := &fakeLedger{}
	prev := ledger.seed(t, "R1", entities.Task(entities.PatternZigZag), now, now, false)
	resolver := newResolver(ledger)

	cmd, err := resolver.Resolve(&entities.PollRequest{
		RobotID:      "R1",
		Instruction:  entities.Idle(),
		BatteryLevel: 90,
	})
	require.NoError(t, err)
	require.True(t, ledger.byID(prev.ID).Completed)
	require.Equal(t, entities.Idle(), decoded(t, cmd))
}

func TestPollCompleteFailureIsSwallowed(t *testing.T) {
	now := time.Now().Unix()
	ledger := &fakeLedger{}
	prev := ledger.seed(t, "R1", entities.Task(entities.PatternZigZag), now, now, false)
	ledger.completeErr = fmt.Errorf("%w: connection reset", apierrors.ErrPersistence)
	resolver := newResolver(ledger)

	cmd, err := resolver.Resolve(&entities.PollRequest{
		RobotID:      "R1",
		Instruction:  entities.Abort(entities.AbortSafety),
		BatteryLevel: 90,
	})
	require.NoError(t, err)
	require.Equal(t, entities.Abort(entities.AbortSafety), decoded(t, cmd))
	require.False(t, ledger.byID(prev.ID).Completed)
}

func TestPollCorruptedPreviousInstructionIsSurfaced(t *testing.T) {
	now := time.Now().Unix()
	ledger := &fakeLedger{}
	require.NoError(t, ledger.Append(&entities.Command{
		RobotID:         "R1",
		TimeIssued:      now,
		TimeInstruction: now,
		Instruction:     "{{not json",
	}))
	resolver := newResolver(ledger)

	_, err := resolver.Resolve(&entities.PollRequest{
		RobotID:      "R1",
		Instruction:  entities.Idle(),
		BatteryLevel: 90,
	})
	require.ErrorIs(t, err, apierrors.ErrCorruptedRecord)
}

func TestPollPersistenceFailurePropagates(t *testing.T) {
	ledger := &fakeLedger{latestErr: fmt.Errorf("%w: timeout", apierrors.ErrPersistence)}
	resolver := newResolver(ledger)

	_, err := resolver.Resolve(&entities.PollRequest{
		RobotID:      "R1",
		Instruction:  entities.Idle(),
		BatteryLevel: 90,
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, apierrors.ErrPersistence))
}

// Overlapping polls for one robot must not interleave their latest-read and
// append: resolution is serialized per robot.
func TestConcurrentPollsSerializePerRobot(t *testing.T) {
	const n = 16

	type result struct {
		id  string
		err error
	}

	resolveAll := func(resolver *usecases.PollUseCase, req entities.PollRequest) []result {
		results := make(chan result, n)
		for i := 0; i < n; i++ {
			go func() {
				r := req
				cmd, err := resolver.Resolve(&r)
				if err != nil {
					results <- result{err: err}
					return
				}
				results <- result{id: cmd.ID}
			}()
		}
		collected := make([]result, 0, n)
		for i := 0; i < n; i++ {
			collected = append(collected, <-results)
		}
		return collected
	}

	t.Run("first idle polls append exactly one row", func(t *testing.T) {
		ledger := &fakeLedger{}
		resolver := newResolver(ledger)

		results := resolveAll(resolver, entities.PollRequest{
			RobotID: "R1", Instruction: entities.Idle(), BatteryLevel: 90,
		})

		// One poll issues the idle row, every other poll finds it through
		// the pending path; an unserialized resolver would append duplicates.
		require.Equal(t, 1, ledger.count())
		for _, r := range results {
			require.NoError(t, r.err)
			require.Equal(t, results[0].id, r.id)
		}
	})

	t.Run("task continuations never append", func(t *testing.T) {
		now := time.Now().Unix()
		ledger := &fakeLedger{}
		prev := ledger.seed(t, "R1", entities.Task(entities.PatternZigZag), now, now, false)
		resolver := newResolver(ledger)

		results := resolveAll(resolver, entities.PollRequest{
			RobotID: "R1", Instruction: entities.Task(entities.PatternZigZag), BatteryLevel: 90,
		})

		require.Equal(t, 1, ledger.count())
		for _, r := range results {
			require.NoError(t, r.err)
			require.Equal(t, prev.ID, r.id)
		}
	})
}

// Full lifecycle: idle, pick up a task, continue it, then go back to idle.
func TestPollLifecycleScenario(t *testing.T) {
	ledger := &fakeLedger{}
	resolver := newResolver(ledger)

	idleCmd, err := resolver.Resolve(&entities.PollRequest{
		RobotID: "R1", Instruction: entities.Idle(), BatteryLevel: 90,
	})
	require.NoError(t, err)
	require.Equal(t, entities.Idle(), decoded(t, idleCmd))
	require.False(t, idleCmd.Completed)

	taskCmd, err := resolver.Resolve(&entities.PollRequest{
		RobotID: "R1", Instruction: entities.Task(entities.PatternZigZag), BatteryLevel: 85,
	})
	require.NoError(t, err)
	require.Equal(t, entities.Task(entities.PatternZigZag), decoded(t, taskCmd))

	again, err := resolver.Resolve(&entities.PollRequest{
		RobotID: "R1", Instruction: entities.Task(entities.PatternZigZag), BatteryLevel: 80,
	})
	require.NoError(t, err)
	require.Equal(t, taskCmd.ID, again.ID)

	final, err := resolver.Resolve(&entities.PollRequest{
		RobotID: "R1", Instruction: entities.Idle(), BatteryLevel: 75,
	})
	require.NoError(t, err)
	require.True(t, ledger.byID(taskCmd.ID).Completed)
	require.Equal(t, entities.Idle(), decoded(t, final))
}
