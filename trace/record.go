// Package trace reads memory access logs and replays them against a cache
// hierarchy.
package trace

import (
	"fmt"
	"strconv"
	"strings"
)

// A Record is one parsed line of a memory access log.
//
// AccessType and ReturnAddress are carried through from the log but do not
// influence the replay.
type Record struct {
	AccessType    string
	Address       uint64
	ThreadID      uint64
	ReturnAddress uint64
}

// ParseRecord parses one log line of the form
//
//	<access_type> <address> <thread_id> <return_address>
//
// with the numeric fields in decimal, separated by whitespace.
func ParseRecord(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return Record{}, fmt.Errorf(
			"expected 4 fields, got %d", len(fields))
	}

	address, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("bad address %q: %w", fields[1], err)
	}

	threadID, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("bad thread id %q: %w", fields[2], err)
	}

	returnAddress, err := strconv.ParseUint(fields[3], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf(
			"bad return address %q: %w", fields[3], err)
	}

	return Record{
		AccessType:    fields[0],
		Address:       address,
		ThreadID:      threadID,
		ReturnAddress: returnAddress,
	}, nil
}
