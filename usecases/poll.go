package usecases

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"fleet-server/apierrors"
	"fleet-server/confs"
	"fleet-server/entities"
	"fleet-server/repositories"
)

// PollUseCase resolves a robot's poll into the command it should execute.
// Resolution for one robot is serialized: the latest-read and any append
// happen under a per-robot lock, so two overlapping polls cannot interleave
// and produce an ambiguous "latest" row.
type PollUseCase struct {
	commands *CommandsUseCase
	ledger   repositories.CommandLedger
	cfg      *confs.Settings

	// One lock per robot id ever seen; entries live for the process
	// lifetime and are never evicted.
	mu    sync.Mutex
	locks map[string]*sync.Mutex // robotID -> lock
}

func NewPollUseCase(commands *CommandsUseCase, ledger repositories.CommandLedger, cfg *confs.Settings) *PollUseCase {
	return &PollUseCase{
		commands: commands,
		ledger:   ledger,
		cfg:      cfg,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Resolve applies the poll decision table:
//
//	battery low          -> Abort(LowBattery), regardless of anything else
//	any       -> Abort   -> complete prev (best effort), new Abort
//	Task(p)   -> Task(p) -> return prev unchanged
//	Task(_)   -> Idle    -> complete prev (best effort), resolve pending
//	any       -> Idle    -> resolve pending
//	Idle/none -> Task(p) -> record and return a fresh Task(p)
//	anything else        -> unsupported, no write
//
// A robot with no ledger history is treated as idle.
func (uc *PollUseCase) Resolve(req *entities.PollRequest) (*entities.Command, error) {
	if req.RobotID == "" {
		return nil, errors.New("robot_id is required")
	}

	lock := uc.lockFor(req.RobotID)
	lock.Lock()
	defer lock.Unlock()

	// Battery check short-circuits the whole table: a robot reporting low
	// battery is aborted even if its instruction claims otherwise.
	if !BatteryOK(req.BatteryLevel, uc.cfg.MinimumBatteryLevel) {
		log.Printf("robot %s reported battery %d, aborting", req.RobotID, req.BatteryLevel)
		return uc.commands.Abort(req.RobotID, entities.AbortLowBattery)
	}

	prev, err := uc.ledger.Latest(req.RobotID)
	prevInstruction := entities.Idle()
	if err != nil {
		if !errors.Is(err, apierrors.ErrNotFound) {
			return nil, err
		}
		prev = nil // no history: idle baseline
	} else {
		prevInstruction, err = prev.Decoded()
		if err != nil {
			return nil, fmt.Errorf("%w: command %s: %v", apierrors.ErrCorruptedRecord, prev.ID, err)
		}
	}

	next := req.Instruction
	switch {
	case next.Kind == entities.KindAbort:
		uc.completeQuietly(prev)
		return uc.commands.Abort(req.RobotID, next.Reason)

	case prevInstruction.Kind == entities.KindTask && next.Kind == entities.KindTask:
		if prevInstruction.Pattern == next.Pattern {
			// Continuation is idempotent: no new row while the robot keeps
			// working the same task.
			return prev, nil
		}
		return nil, apierrors.ErrUnsupportedTransition

	case prevInstruction.Kind == entities.KindTask && next.Kind == entities.KindIdle:
		uc.completeQuietly(prev)
		return uc.resolvePending(req.RobotID)

	case next.Kind == entities.KindIdle:
		return uc.resolvePending(req.RobotID)

	case prevInstruction.Kind == entities.KindIdle && next.Kind == entities.KindTask:
		// The robot picked up an assigned task from the idle baseline;
		// record it so subsequent polls continue it.
		return uc.commands.Task(req.RobotID, next.Pattern)

	default:
		return nil, apierrors.ErrUnsupportedTransition
	}
}

// resolvePending hands back the head of the robot's incomplete queue when it
// is still actionable, otherwise issues a fresh idle. A stale head stays
// incomplete; it expires via the validity window rather than being purged.
func (uc *PollUseCase) resolvePending(robotID string) (*entities.Command, error) {
	pending, err := uc.ledger.Incomplete(robotID)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 && uc.commands.IsInstructionValid(&pending[0]) {
		head := pending[0]
		return &head, nil
	}
	return uc.commands.Idle(robotID)
}

// completeQuietly marks a superseded command done, best effort. Issuing the
// next instruction takes priority over recording that the old one finished.
func (uc *PollUseCase) completeQuietly(prev *entities.Command) {
	if prev == nil || prev.Completed {
		return
	}
	if err := uc.ledger.Complete(prev.ID); err != nil {
		log.Printf("could not complete command %s: %v", prev.ID, err)
	}
}

func (uc *PollUseCase) lockFor(robotID string) *sync.Mutex {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	l, ok := uc.locks[robotID]
	if !ok {
		l = &sync.Mutex{}
		uc.locks[robotID] = l
	}
	return l
}
