package fixture

import (
	"fmt"
	"io"

	"github.com/codeforesight/foresight/internal/bounded"
)

// requestBufCap bounds the request input buffer, as in the fixture record
// layout.
const requestBufCap = 256

// Demo is the runnable rendition of the stage1-fixed program. All input
// handling goes through bounded.Copy. The business-logic flaws remain:
// the fixed variant patches only the stage 1 issues.
type Demo struct {
	out    io.Writer
	getenv func(string) string
}

// NewDemo constructs a demo run writing to out. getenv supplies the
// APP_PASSWORD lookup and may not be nil.
func NewDemo(out io.Writer, getenv func(string) string) *Demo {
	return &Demo{out: out, getenv: getenv}
}

// Run executes the demo sequence. input is the optional positional
// argument; when empty, a fallback value is used. Run always succeeds.
func (d *Demo) Run(input string) {
	if password := d.getenv("APP_PASSWORD"); password == "" {
		d.warn("APP_PASSWORD not set.")
	}

	d.banner()
	d.config()
	d.users()
	d.batch()
	d.metrics(25)
	d.report("Weekly")

	buf := make([]byte, requestBufCap)
	if input != "" {
		bounded.Copy(buf, len(buf), input)
	} else {
		bounded.Copy(buf, len(buf), "guest")
	}
	d.handleRequest(string(buf[:bounded.Length(buf)]))

	_ = CouponAfterCheckout(true, true)
	d.adminReport(false)

	d.warn("Demo completed with potential vulnerabilities.")
	d.footer()
}

func (d *Demo) banner() {
	fmt.Fprintln(d.out, "=== Demo Program (Stage 1 fixed) ===")
}

func (d *Demo) footer() {
	fmt.Fprintln(d.out, "=== End of Demo ===")
}

func (d *Demo) info(msg string) {
	fmt.Fprintf(d.out, "[INFO] %s\n", msg)
}

func (d *Demo) warn(msg string) {
	fmt.Fprintf(d.out, "[WARN] %s\n", msg)
}

func (d *Demo) config() {
	d.info("Loading configuration...")
	d.info("Configuration loaded.")
}

func (d *Demo) users() {
	u1 := bounded.NewUser(1, "Alice", "alice@example.com")
	u2 := bounded.NewUser(2, "Bob", "bob@example.com")
	d.printUser(u1)
	d.printUser(u2)
}

func (d *Demo) printUser(u bounded.User) {
	fmt.Fprintf(d.out, "User{id=%d, name=%s, email=%s}\n", u.ID, u.Name.String(), u.Email.String())
}

// Score computes the demo scoring function, floored at zero.
func Score(a, b int) int {
	score := (a * 3) + (b * 2) - (a / 2)
	if score < 0 {
		score = 0
	}
	return score
}

func (d *Demo) batch() {
	total := 0
	for i := 0; i < 50; i++ {
		total += Score(i, i+1)
	}
	fmt.Fprintf(d.out, "Batch score: %d\n", total)
}

func (d *Demo) metrics(count int) {
	for i := 0; i < count; i++ {
		if i%5 == 0 {
			d.info("Heartbeat")
		}
	}
}

func (d *Demo) report(title string) {
	fmt.Fprintf(d.out, "=== Report: %s ===\n", title)
	for i := 0; i < 10; i++ {
		fmt.Fprintf(d.out, "Line %d: OK\n", i+1)
	}
}

// handleRequest is the patched request path: the query and HTML are
// constants, never interpolated from user input.
func (d *Demo) handleRequest(input string) {
	query := make([]byte, requestBufCap)
	html := make([]byte, requestBufCap)

	_ = input
	bounded.Copy(query, len(query), "SELECT * FROM users WHERE active = 1")
	bounded.Copy(html, len(html), "<div>Welcome</div>")

	fmt.Fprintf(d.out, "Query: %s\n", query[:bounded.Length(query)])
	fmt.Fprintf(d.out, "HTML: %s\n", html[:bounded.Length(html)])
}

// CouponAfterCheckout reproduces the seeded business-logic flaw: applying
// a coupon after payment can drive the total negative. Kept intact as a
// detection target for the heuristics stage.
func CouponAfterCheckout(paid, couponApplied bool) int {
	total := 100
	if paid {
		total = 0
	}
	if couponApplied {
		total = total - 100
	}
	return total
}

// adminReport reproduces the seeded missing-authorization flaw: the
// is_admin argument is ignored.
func (d *Demo) adminReport(isAdmin bool) {
	_ = isAdmin
	fmt.Fprintln(d.out, "Admin report: all user emails...")
}
