package rdlogger

import (
	"fmt"
	"log"
	"runtime"
)

func stackInfo(depth int) (string, int) {
	pc, _, line, ok := runtime.Caller(depth + 1)
	if !ok {
		panic("cannot read caller stack")
	}
	fn := runtime.FuncForPC(pc)

	return fn.Name(), line
}

const InfoColor = "%s"
const ErrorColor = "\033[1;31m%s\033[0m"          // red
const TopologyColor = "\033[1;48;5;198m%s\033[0m" // DeepPink1 background
const RouteColor = "\033[1;48;5;65m%s\033[0m"     // DarkSeaGreen4 background
const MoveColor = "\033[1;48;5;179m%s\033[0m"     // LightGoldenrod3 background
const IndexColor = "\033[1;38;5;100m%s\033[0m"    // Yellow4

type debugOption struct {
	prefix     string
	stackDepth int
	enable     bool
	color      string
}

const debugOn = false

var dos map[int]debugOption = map[int]debugOption{
	0: {prefix: "ERROR", stackDepth: 1, enable: debugOn, color: ErrorColor},
	1: {prefix: "INFO", stackDepth: 1, enable: debugOn, color: InfoColor},
	2: {prefix: "TOPOLOGY", stackDepth: 1, enable: debugOn, color: TopologyColor},
	3: {prefix: "ROUTE", stackDepth: 1, enable: debugOn, color: RouteColor},
	4: {prefix: "MOVE", stackDepth: 1, enable: debugOn, color: MoveColor},
	5: {prefix: "INDEX", stackDepth: 2, enable: false, color: IndexColor},
}

// RingLogger prints leveled, colored debug lines for one DHT instance.
// Everything is off unless debugOn is flipped or Enable is called.
type RingLogger struct {
	log      log.Logger
	bits     int
	machines int
	enabled  map[int]bool
}

func NewRingDebugLogger() *RingLogger {
	p := &RingLogger{}
	p.log = *log.Default()
	p.log.SetFlags(log.Ltime | log.Lmicroseconds)
	p.enabled = map[int]bool{}

	return p
}

// SetContext records the figures printed in front of every line.
func (p *RingLogger) SetContext(bits int, machines int) {
	p.bits = bits
	p.machines = machines
}

// Enable force-enables one level regardless of the compile-time default.
func (p *RingLogger) Enable(level int) {
	p.enabled[level] = true
}

func (p *RingLogger) Error(format string, args ...interface{}) {
	p.debugPrintWrapper(0, format, args...)
}

func (p *RingLogger) Info(format string, args ...interface{}) {
	p.debugPrintWrapper(1, format, args...)
}

func (p *RingLogger) Topology(format string, args ...interface{}) {
	p.debugPrintWrapper(2, format, args...)
}

func (p *RingLogger) Route(format string, args ...interface{}) {
	p.debugPrintWrapper(3, format, args...)
}

func (p *RingLogger) Move(format string, args ...interface{}) {
	p.debugPrintWrapper(4, format, args...)
}

func (p *RingLogger) Index(format string, args ...interface{}) {
	p.debugPrintWrapper(5, format, args...)
}

func (p *RingLogger) debugPrintWrapper(level int, format string, args ...interface{}) {
	debug := dos[level]
	if !debug.enable && !p.enabled[level] {
		return
	}
	lines := []int{}
	for i := 1; i <= debug.stackDepth; i++ {
		_, line := stackInfo(i + 1)
		lines = append(lines, line)
	}
	common := p.commonPrint()
	str := fmt.Sprintf("[%s(%v)| %s] %s", debug.prefix, lines, common, format)
	str = fmt.Sprintf(debug.color, str)
	p.log.Printf(str, args...)
}

func (p *RingLogger) commonPrint() string {

	str := fmt.Sprintf("space %d bits, %d machines", p.bits, p.machines)
	return str
}
