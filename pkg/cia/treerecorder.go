package cia

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
)

// VBC node colors, spec.md section 6.
const (
	colorActive     = 4
	colorSelected   = 8
	colorFathomed   = 6
	colorInfeasible = 13
	colorSolved     = 9
	colorInteger    = 2
)

// virtualRootID is the synthetic predecessor every root child is written
// as a child of; real node ids are seq_num + 2 so they never collide with
// it.
const virtualRootID = 1

func stateColor(s NodeState) int {
	switch s {
	case StateActive:
		return colorActive
	case StateSelected:
		return colorSelected
	case StateFathomed:
		return colorFathomed
	case StateInfeasible:
		return colorInfeasible
	case StateSolved:
		return colorSolved
	case StateInteger:
		return colorInteger
	default:
		return colorActive
	}
}

func nodeID(n *Node) uint64 {
	if n == nil {
		return virtualRootID
	}
	return n.SeqNum() + 2
}

func parentID(n *Node) uint64 {
	return nodeID(n.Parent())
}

// TreeRecorder is the VBC-format tree-visualization Monitor of spec.md
// sections 4.5 and 6: one line per node-lifecycle event, written to a file
// that is optionally compressed and optionally timestamped against a
// steady clock.
//
// Compression is grounded on junjiewwang-perf-analysis/pkg/compression's
// zstd-with-gzip-fallback Default(), adapted from its buffer-then-compress
// API to a streaming writer (a search trace can run far longer than
// comfortably fits in memory), and selected by the vbc_file extension
// (".zst" or ".gz") rather than a separate config key, since spec.md's
// section 6 configuration-key list has no compression toggle.
type TreeRecorder struct {
	f      *os.File
	w      *bufio.Writer
	closer io.Closer // non-nil when w wraps a compressing writer that needs Close

	timing   bool
	dilation float64
	start    time.Time

	log *logrus.Logger
}

// NewTreeRecorder opens path and prepares it to receive VBC-format events.
// timing selects timed vs. untimed mode; dilation scales the steady-clock
// timestamps written in timed mode (ignored otherwise). log receives the
// "compression unsupported, falling back to uncompressed" warning, if any;
// a nil log uses logrus's standard logger.
func NewTreeRecorder(path string, timing bool, dilation float64, log *logrus.Logger) (*TreeRecorder, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cia: opening vbc file %q: %w", path, err)
	}

	r := &TreeRecorder{
		f:        f,
		timing:   timing,
		dilation: dilation,
		start:    time.Now(),
		log:      log,
	}

	var w io.Writer = f
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		zw, err := zstd.NewWriter(f)
		if err != nil {
			log.WithError(err).Warn("cia: zstd unavailable for vbc file, writing uncompressed")
		} else {
			w = zw
			r.closer = zw
		}
	case ".gz":
		gw := gzip.NewWriter(f)
		w = gw
		r.closer = gw
	}

	r.w = bufio.NewWriter(w)
	r.writeHeader()
	return r, nil
}

func (r *TreeRecorder) writeHeader() {
	fmt.Fprintln(r.w, "#TYPE: COMPLETE")
	if r.timing {
		fmt.Fprintln(r.w, "#TIME: SET")
	} else {
		fmt.Fprintln(r.w, "#TIME: NONE")
	}
	fmt.Fprintln(r.w, "#BOUNDS: SET")
	fmt.Fprintln(r.w, "#INFORMATION: STANDARD")
	fmt.Fprintln(r.w, "#NODE_NUMBER: NONE")
}

func (r *TreeRecorder) timestamp() string {
	elapsed := time.Since(r.start).Seconds() * r.dilation
	h := int(elapsed) / 3600
	m := (int(elapsed) % 3600) / 60
	s := elapsed - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%05.2f", h, m, s)
}

func (r *TreeRecorder) create(parent, node uint64, color int) {
	if r.timing {
		fmt.Fprintf(r.w, "%s N %d %d %d\n", r.timestamp(), parent, node, color)
	} else {
		fmt.Fprintf(r.w, "e %d %d\nc %d %d\n", parent, node, node, color)
	}
}

func (r *TreeRecorder) recolor(node uint64, color int) {
	if r.timing {
		fmt.Fprintf(r.w, "%s P %d %d\n", r.timestamp(), node, color)
	} else {
		fmt.Fprintf(r.w, "c %d %d\n", node, color)
	}
}

func (r *TreeRecorder) info(node uint64, text string) {
	if r.timing {
		fmt.Fprintf(r.w, "%s I %d %s\n", r.timestamp(), node, text)
	} else {
		fmt.Fprintf(r.w, "n %d %s\n", node, text)
	}
}

// OnStartSearch writes the virtual root and the initial upper bound.
func (r *TreeRecorder) OnStartSearch(ub float64) {
	r.create(virtualRootID, virtualRootID, colorActive)
	if r.timing {
		fmt.Fprintf(r.w, "%s U %v\n", r.timestamp(), ub)
	} else {
		fmt.Fprintf(r.w, "U %v\n", ub)
	}
}

// OnCreate records a newly branched-into node, colored active.
func (r *TreeRecorder) OnCreate(n *Node) {
	r.create(parentID(n), nodeID(n), colorActive)
	r.info(nodeID(n), fmt.Sprintf("depth=%d lb=%v", n.Depth(), n.Lb()))
}

// OnSelect recolors the node the driver just dispensed from the queue.
func (r *TreeRecorder) OnSelect(n *Node) {
	r.recolor(nodeID(n), colorSelected)
}

// OnChange recolors n to reflect its new lifecycle state, and on a new
// incumbent announces the improved bound.
func (r *TreeRecorder) OnChange(n *Node, state NodeState) {
	r.recolor(nodeID(n), stateColor(state))
	if state == StateInteger {
		if r.timing {
			fmt.Fprintf(r.w, "%s U %v\n", r.timestamp(), n.Lb())
		} else {
			fmt.Fprintf(r.w, "U %v\n", n.Lb())
		}
	}
}

// OnStopSearch flushes and closes the underlying file.
func (r *TreeRecorder) OnStopSearch(status Status) {
	r.info(virtualRootID, fmt.Sprintf("status=%s", status))
	if err := r.Close(); err != nil {
		r.log.WithError(err).Warn("cia: closing vbc file")
	}
}

// Close flushes buffered output and closes the compressor (if any) and the
// underlying file. Safe to call more than once.
func (r *TreeRecorder) Close() error {
	if r.w == nil {
		return nil
	}
	if err := r.w.Flush(); err != nil {
		return err
	}
	r.w = nil
	if r.closer != nil {
		if err := r.closer.Close(); err != nil {
			return err
		}
		r.closer = nil
	}
	return r.f.Close()
}
