package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var csvColumns = []string{
	"kind", "entity_id", "peer_id", "round", "packet_id", "workload",
	"service_ms", "scaled_ms", "acks", "latency_us",
}

// WriteCSV writes every service record followed by every round record.
// Unused columns are left empty.
func WriteCSV(w io.Writer, st *SimulationTrace) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, s := range st.Services() {
		row := []string{
			"service",
			strconv.Itoa(s.ServerID),
			strconv.Itoa(s.Origin),
			"",
			s.PacketID,
			strconv.FormatUint(s.Workload, 10),
			strconv.FormatUint(s.ServiceMs, 10),
			strconv.FormatUint(s.ScaledMs, 10),
			"",
			"",
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing service row %d: %w", i, err)
		}
	}
	for i, r := range st.Rounds() {
		row := []string{
			"round",
			strconv.Itoa(r.ClientID),
			"",
			strconv.Itoa(r.Round),
			"",
			strconv.FormatUint(r.Workload, 10),
			"",
			"",
			strconv.Itoa(r.Acks),
			strconv.FormatInt(r.Latency.Microseconds(), 10),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing round row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
