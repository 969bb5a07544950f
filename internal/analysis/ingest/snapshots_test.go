package ingest

import (
	"bytes"
	"compress/gzip"
	"strings"
	"testing"

	"MakerLens/internal/domain/models"
)

const captureLines = `{"asset": "UP", "event": "book", "ts": 1700000010, "bids": [[0.48, 500]], "asks": [[0.52, 800]]}
{"asset": "DN", "event": "book", "ts": 1700000010, "bids": [[0.46, 300]], "asks": [[0.50, 200]]}
{"asset": "UP", "event": "trade", "ts": 1700000011, "bids": [], "asks": []}
{"asset": "UP", "event": "book", "ts": 1700000005, "bids": [[0.48, 400], [0.48, 450]], "asks": [[0.52, 800]]}
{"asset": "UP", "event": "book", "ts": 1700000012, "bids": [[0.53, 100]], "asks": [[0.52, 800]]}
{"asset": "??", "event": "book", "ts": 1700000013, "bids": [], "asks": []}
`

func TestReadSnapshots(t *testing.T) {
	res, err := ReadSnapshots(strings.NewReader(captureLines), "btc-up-15m-1700000000")
	if err != nil {
		t.Fatalf("ReadSnapshots: %v", err)
	}

	if res.Report.SnapshotsParsed != 4 {
		t.Errorf("parsed = %d, want 4", res.Report.SnapshotsParsed)
	}
	if res.Report.SnapshotsCrossed != 1 {
		t.Errorf("crossed = %d, want 1 (bid 0.53 over ask 0.52)", res.Report.SnapshotsCrossed)
	}
	if res.Report.SnapshotsBad != 1 {
		t.Errorf("bad = %d, want 1 (unknown asset)", res.Report.SnapshotsBad)
	}

	up := res.ByOutcome[models.UP]
	if len(up) != 3 {
		t.Fatalf("UP snapshots = %d, want 3", len(up))
	}
	// Sorted by timestamp despite out-of-order input.
	if up[0].Timestamp != 1700000005 {
		t.Errorf("first UP snapshot ts = %v, want 1700000005", up[0].Timestamp)
	}
	// Repeated price keeps the later correction.
	if got := up[0].BidAt(0.48); got != 450 {
		t.Errorf("deduped bid size = %v, want 450", got)
	}
	if up[1].Kind != models.EventBook || up[2].Kind != models.EventTrade {
		t.Errorf("event kinds out of order: %s, %s", up[1].Kind, up[2].Kind)
	}
	if len(res.ByOutcome[models.DOWN]) != 1 {
		t.Errorf("DOWN snapshots = %d, want 1", len(res.ByOutcome[models.DOWN]))
	}
}

// A capture cut off mid-write decodes cleanly up to the truncation point.
func TestReadSnapshotsTruncatedGzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(captureLines)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	full := buf.Bytes()
	truncated := full[:len(full)-10]
	gzr, err := gzip.NewReader(bytes.NewReader(truncated))
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}

	res, err := ReadSnapshots(gzr, "btc-up-15m-1700000000")
	if err != nil {
		t.Fatalf("ReadSnapshots on truncated stream: %v", err)
	}
	if res.Report.SnapshotsParsed == 0 {
		t.Error("nothing decoded before the truncation point")
	}
}

func TestSnapshotDirMissingFile(t *testing.T) {
	d := NewSnapshotDir(t.TempDir())
	res, err := d.Load("btc-up-15m-1700000000")
	if err != nil {
		t.Fatalf("Load on missing capture: %v", err)
	}
	if len(res.ByOutcome) != 0 {
		t.Errorf("ByOutcome = %v, want empty for NO_CAPTURE handling", res.ByOutcome)
	}
}
