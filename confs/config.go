package confs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadConfig loads environment variables from a .env file if present
// and validates essential settings when needed.
func LoadConfig() error {
	// Load .env if it exists; ignore error if file not found
	if err := godotenv.Load(); err != nil {
		// Only log when the file truly doesn't exist; not an error for runtime
		if !os.IsNotExist(err) {
			log.Printf("warning: could not load .env: %v", err)
		}
	}
	return nil
}

// Settings holds the tunables of the poll protocol. The two time buffers are
// deployment knobs, not protocol constants.
type Settings struct {
	ListenAddr string

	// MinimumBatteryLevel is the floor below which every poll resolves to
	// Abort(LowBattery).
	MinimumBatteryLevel int64

	// TimeIssuedBufferSeconds is the allowed clock skew between a command
	// request and the server clock at issuance.
	TimeIssuedBufferSeconds int64

	// TimeInstructionBufferSeconds is how long an instruction stays
	// actionable before it is considered stale.
	TimeInstructionBufferSeconds int64

	// BatteryDeltaThreshold filters telemetry: readings within this delta of
	// the previous kept reading are dropped at flush time.
	BatteryDeltaThreshold int64

	// FlushIntervalSeconds is the telemetry batch flush period.
	FlushIntervalSeconds int64
}

func NewSettings() *Settings {
	return &Settings{
		ListenAddr:                   envString("LISTEN_ADDR", "0.0.0.0:3536"),
		MinimumBatteryLevel:          envInt64("MINIMUM_BATTERY_LEVEL", 50),
		TimeIssuedBufferSeconds:      envInt64("TIME_ISSUED_BUFFER_SECONDS", 300),
		TimeInstructionBufferSeconds: envInt64("TIME_INSTRUCTION_BUFFER_SECONDS", 600),
		BatteryDeltaThreshold:        envInt64("BATTERY_DELTA_THRESHOLD", 2),
		FlushIntervalSeconds:         envInt64("FLUSH_INTERVAL_SECONDS", 300),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("warning: %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}
