package bounded

// Buffer is a fixed-capacity byte buffer. Every write goes through Copy,
// so the contents are always terminated and never exceed the capacity
// declared at construction.
type Buffer struct {
	data []byte
}

// NewBuffer allocates a buffer with the given capacity. A zero capacity is
// legal; such a buffer accepts writes but stores nothing.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

// Set replaces the buffer contents with src, truncating silently when src
// does not fit.
func (b *Buffer) Set(src string) {
	Copy(b.data, len(b.data), src)
}

// String returns the bytes written before the terminator.
func (b *Buffer) String() string {
	return string(b.data[:Length(b.data)])
}

// Len reports the number of stored bytes, excluding the terminator.
func (b *Buffer) Len() int {
	return Length(b.data)
}

// Cap reports the declared capacity, including the terminator slot.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Capacities of the User record fields, matching the fixture record layout.
const (
	UserNameCap  = 64
	UserEmailCap = 128
)

// User is a record holding an identifier and two bounded buffers. It is
// populated once at construction and not mutated afterwards.
type User struct {
	ID    int
	Name  *Buffer
	Email *Buffer
}

// NewUser populates all fields atomically from the three inputs. Name and
// email are bounded-copied, so over-length values are truncated rather
// than corrupting adjacent fields.
func NewUser(id int, name, email string) User {
	u := User{
		ID:    id,
		Name:  NewBuffer(UserNameCap),
		Email: NewBuffer(UserEmailCap),
	}
	u.Name.Set(name)
	u.Email.Set(email)
	return u
}
