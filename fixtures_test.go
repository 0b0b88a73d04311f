package sculptor

import (
	"testing"

	"github.com/samuelmaurice/sculptor/database"
	"github.com/samuelmaurice/sculptor/database/dbtest"
	"github.com/samuelmaurice/sculptor/schema"
)

type User struct {
	Base
	Id    int64
	Name  string
	Age   int
	Email string
}

type Post struct {
	Base
	Id     int64
	UserId int64
	Title  string
}

type Profile struct {
	Base
	Id     int64
	UserId int64
	Bio    string
}

// Comment does not embed Base, so its relations are never memoized.
type Comment struct {
	Id       int64
	PostId   int64
	WriterId int64
	Body     string
}

var (
	userEntity = schema.MustNew([]schema.Field[User]{
		schema.Integer("Id", func(u *User) *int64 { return &u.Id }),
		schema.String("Name", func(u *User) *string { return &u.Name }),
		schema.Integer("Age", func(u *User) *int { return &u.Age }),
		schema.String("Email", func(u *User) *string { return &u.Email }),
	})

	postEntity = schema.MustNew([]schema.Field[Post]{
		schema.Integer("Id", func(p *Post) *int64 { return &p.Id }),
		schema.Integer("UserId", func(p *Post) *int64 { return &p.UserId }),
		schema.String("Title", func(p *Post) *string { return &p.Title }),
	})

	profileEntity = schema.MustNew([]schema.Field[Profile]{
		schema.Integer("Id", func(p *Profile) *int64 { return &p.Id }),
		schema.Integer("UserId", func(p *Profile) *int64 { return &p.UserId }),
		schema.String("Bio", func(p *Profile) *string { return &p.Bio }),
	})

	commentEntity = schema.MustNew([]schema.Field[Comment]{
		schema.Integer("Id", func(c *Comment) *int64 { return &c.Id }),
		schema.Integer("PostId", func(c *Comment) *int64 { return &c.PostId }),
		schema.Integer("WriterId", func(c *Comment) *int64 { return &c.WriterId }, schema.Column("author_id")),
		schema.String("Body", func(c *Comment) *string { return &c.Body }),
	})
)

type fixture struct {
	conn     *dbtest.Connection
	registry *database.Registry
	users    *Model[User]
	posts    *Model[Post]
	profiles *Model[Profile]
	comments *Model[Comment]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn := dbtest.New(nil)
	registry := database.NewRegistry()
	registry.Register("main", conn)

	return &fixture{
		conn:     conn,
		registry: registry,
		users:    MustNewModel(registry, userEntity),
		posts:    MustNewModel(registry, postEntity),
		profiles: MustNewModel(registry, profileEntity),
		comments: MustNewModel(registry, commentEntity),
	}
}

// lastSQL returns the SQL of the most recent statement.
func (f *fixture) lastSQL(t *testing.T) string {
	t.Helper()
	st, ok := f.conn.Last()
	if !ok {
		t.Fatal("no statement executed")
	}
	return st.SQL
}
