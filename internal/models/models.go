package models

// GlobalRole is a user's workspace-wide permission.
//
// The numeric values are part of the API (permission_id in requests),
// so they must not be renumbered.
type GlobalRole int

const (
	RoleOwner  GlobalRole = 1
	RoleMember GlobalRole = 2
)

// User is a person in the workspace.
//
// Users are never deleted. Admin removal anonymizes the profile and sets
// Removed, so the ID stays resolvable for old messages while the email
// and handle become free for new registrations.
type User struct {
	ID            int            `json:"id"`
	Email         string         `json:"email"`
	NameFirst     string         `json:"name_first"`
	NameLast      string         `json:"name_last"`
	HandleStr     string         `json:"handle_str"`
	PasswordHash  string         `json:"password_hash"`
	Role          GlobalRole     `json:"role"`
	Removed       bool           `json:"removed"`
	Notifications []Notification `json:"notifications"`
}

// ContainerKind tells which of the two message containers a reference
// points at.
type ContainerKind string

const (
	KindChannel ContainerKind = "channel"
	KindDm      ContainerKind = "dm"
)

// ContainerRef is the tagged union {Channel, Dm} wrapping a container ID.
//
// Channels and DMs have separate ID sequences, so the kind is needed to
// resolve the ID. Messages share one ID space across both kinds.
type ContainerRef struct {
	Kind ContainerKind `json:"kind"`
	ID   int           `json:"id"`
}

func ChannelRef(id int) ContainerRef { return ContainerRef{Kind: KindChannel, ID: id} }

func DmRef(id int) ContainerRef { return ContainerRef{Kind: KindDm, ID: id} }

// Channel is a named room with an owner subset and optional standup.
type Channel struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	IsPublic  bool       `json:"is_public"`
	OwnerIDs  []int      `json:"owner_ids"`
	MemberIDs []int      `json:"member_ids"`
	Messages  []*Message `json:"messages"`
	Standup   *Standup   `json:"standup,omitempty"`
}

// Dm is a direct-message group. Its name is derived from the member
// handles at creation time and never changes.
type Dm struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	CreatorID int        `json:"creator_id"`
	MemberIDs []int      `json:"member_ids"`
	Messages  []*Message `json:"messages"`
}

// Message lives in exactly one container for its whole lifetime.
//
// Container messages are kept newest first: index 0 is the most recent
// message, which is what pagination walks from.
type Message struct {
	ID        int          `json:"id"`
	Container ContainerRef `json:"container"`
	SenderID  int          `json:"sender_id"`
	Body      string       `json:"body"`
	TimeSent  int64        `json:"time_sent"`
	IsPinned  bool         `json:"is_pinned"`
	Reacts    []React      `json:"reacts"`

	// TaggedIDs records every user already notified of a tag in this
	// message, so edits never notify the same user twice.
	TaggedIDs []int `json:"tagged_ids,omitempty"`
}

// React is one reaction kind on a message and the users who chose it.
type React struct {
	ReactID int   `json:"react_id"`
	UserIDs []int `json:"user_ids"`
}

// Standup is the buffering state of an active standup on a channel.
type Standup struct {
	StarterID  int           `json:"starter_id"`
	TimeFinish int64         `json:"time_finish"`
	Buffer     []StandupLine `json:"buffer"`
}

// StandupLine is one buffered standup send.
type StandupLine struct {
	Handle string `json:"handle"`
	Text   string `json:"text"`
}

// Notification is one feed entry. Exactly one of ChannelID and DmID is
// set; the other is -1.
type Notification struct {
	ChannelID int    `json:"channel_id"`
	DmID      int    `json:"dm_id"`
	Text      string `json:"notification_message"`
}

// Workspace is the full persisted snapshot. Storage backends load and
// save it as one unit around every mutating operation.
//
// The Last*ID counters only grow, so IDs are never reused even after a
// message is deleted.
type Workspace struct {
	Users         []*User    `json:"users"`
	Channels      []*Channel `json:"channels"`
	Dms           []*Dm      `json:"dms"`
	LastUserID    int        `json:"last_user_id"`
	LastChannelID int        `json:"last_channel_id"`
	LastDmID      int        `json:"last_dm_id"`
	LastMessageID int        `json:"last_message_id"`
}
