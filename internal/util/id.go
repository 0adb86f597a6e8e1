package util

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/sony/sonyflake"
	"go.uber.org/zap"
)

const (
	machineIDKey = "WEIBOAUTH_MACHINE_ID"
	machineIPKey = "WEIBOAUTH_MACHINE_IP"
)

var idEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

var (
	idGenerator     *sonyflake.Sonyflake
	idGeneratorErr  error
	idGeneratorOnce sync.Once
)

// NextID returns a new unique account id.
func NextID() uint64 {
	idGeneratorOnce.Do(func() {
		idGenerator, idGeneratorErr = newIDGenerator()
	})
	if idGeneratorErr != nil {
		panic(fmt.Errorf("unable to generate ID, sonyflake not configured properly: %w", idGeneratorErr))
	}

	id, err := idGenerator.NextID()
	if err != nil {
		panic(err)
	}
	return id
}

func newIDGenerator() (*sonyflake.Sonyflake, error) {
	machineID, err := machineIDFromEnv()
	if err != nil {
		return nil, err
	}

	settings := sonyflake.Settings{StartTime: idEpoch, MachineID: machineID}

	sf, err := sonyflake.New(settings)
	if errors.Is(err, sonyflake.ErrNoPrivateAddress) {
		id := RandUint16()
		zap.L().Warn("no private ip address for the sonyflake machine id, using a random one", zap.Uint16("id", id))

		settings.MachineID = fixedMachineID(id)
		sf, err = sonyflake.New(settings)
	}

	return sf, err
}

// machineIDFromEnv returns nil when no machine id is configured, in which case
// sonyflake derives one from the private ip address.
func machineIDFromEnv() (func() (uint16, error), error) {
	if v := os.Getenv(machineIDKey); v != "" {
		id, err := strconv.ParseUint(v, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid %s '%s': %w", machineIDKey, v, err)
		}
		return fixedMachineID(uint16(id)), nil
	}

	if v := os.Getenv(machineIPKey); v != "" {
		ip := net.ParseIP(v).To4()
		if ip == nil {
			return nil, fmt.Errorf("invalid %s '%s'", machineIPKey, v)
		}
		return fixedMachineID(uint16(ip[2])<<8 + uint16(ip[3])), nil
	}

	return nil, nil
}

func fixedMachineID(id uint16) func() (uint16, error) {
	return func() (uint16, error) { return id, nil }
}
