package sculptor

import (
	"context"
	"errors"
	"testing"

	"github.com/samuelmaurice/sculptor/database"
	"github.com/samuelmaurice/sculptor/query"
	"github.com/samuelmaurice/sculptor/schema"
)

func TestNewModel_Errors(t *testing.T) {
	if _, err := NewModel(nil, userEntity); err == nil {
		t.Error("expected error for nil registry")
	}
	if _, err := NewModel[User](database.NewRegistry(), nil); err == nil {
		t.Error("expected error for nil entity")
	}
}

func TestModel_Find(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.conn.QueueRows(database.Row{"id": query.Int(7), "name": query.Text("Ann"), "age": query.Int(30)})

	u, err := f.users.Find(ctx, 7)
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if u.Id != 7 || u.Name != "Ann" || u.Age != 30 {
		t.Errorf("Find() = %+v", u)
	}
	if got, want := f.lastSQL(t), "SELECT * FROM users WHERE id = @id LIMIT 1"; got != want {
		t.Errorf("SQL mismatch\n got: %s\nwant: %s", got, want)
	}
	if !f.users.Exists(u) {
		t.Error("found model should exist")
	}

	if _, err := f.users.Find(ctx, 999); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Find(999) expected ErrModelNotFound, got %v", err)
	}
}

func TestModel_All(t *testing.T) {
	f := newFixture(t)
	f.conn.QueueRows(
		database.Row{"id": query.Int(1)},
		database.Row{"id": query.Int(2)},
		database.Row{"id": query.Int(3)},
	)

	users, err := f.users.All(context.Background())
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("All() returned %d users", len(users))
	}
	if got := f.lastSQL(t); got != "SELECT * FROM users" {
		t.Errorf("SQL = %s", got)
	}
}

func TestModel_SaveNew(t *testing.T) {
	f := newFixture(t)
	f.conn.SetNextID(12)

	u := &User{Name: "Ann", Age: 30, Email: "ann@example.com"}
	if f.users.Exists(u) {
		t.Fatal("new model should not exist")
	}

	if err := f.users.Save(context.Background(), u); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if f.conn.Count(query.InsertQuery) != 1 || f.conn.Count(query.UpdateQuery) != 0 {
		t.Errorf("expected exactly one INSERT, got %+v", f.conn.Statements())
	}
	if u.Id != 12 || !f.users.Exists(u) {
		t.Errorf("key not written back: %+v", u)
	}
	if got, want := f.lastSQL(t), "INSERT INTO users (name, age, email) VALUES (@name, @age, @email)"; got != want {
		t.Errorf("SQL mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestModel_SavePersisted(t *testing.T) {
	f := newFixture(t)

	u := &User{Id: 5, Name: "Bob", Age: 40}
	if err := f.users.Save(context.Background(), u); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if f.conn.Count(query.UpdateQuery) != 1 || f.conn.Count(query.InsertQuery) != 0 {
		t.Errorf("expected exactly one UPDATE, got %+v", f.conn.Statements())
	}

	st, _ := f.conn.Last()
	if want := "UPDATE users SET name = @name, age = @age, email = @email WHERE id = @id"; st.SQL != want {
		t.Errorf("SQL mismatch\n got: %s\nwant: %s", st.SQL, want)
	}
	if id := st.Bindings.Map()["id"]; !id.Equal(query.Int(5)) {
		t.Errorf("id binding = %v", id)
	}
}

func TestModel_SaveError(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("duplicate key")
	f.conn.FailWith(boom)

	u := &User{Name: "Ann"}
	if err := f.users.Save(context.Background(), u); !errors.Is(err, boom) {
		t.Fatalf("expected driver error, got %v", err)
	}
	if f.users.Exists(u) {
		t.Error("failed insert must leave the model new")
	}
}

func TestModel_Async(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := &User{Name: "Ann"}
	saved, err := f.users.SaveAsync(ctx, u).Await(ctx)
	if err != nil {
		t.Fatalf("SaveAsync() error: %v", err)
	}
	if saved != u || u.Id != 1 {
		t.Errorf("SaveAsync() = %+v", saved)
	}

	f.conn.QueueRows(database.Row{"id": query.Int(1), "name": query.Text("Ann")})
	found, err := f.users.FindAsync(ctx, 1).Await(ctx)
	if err != nil || found.Name != "Ann" {
		t.Errorf("FindAsync() = %v, %v", found, err)
	}

	f.conn.QueueRows(database.Row{"id": query.Int(1)}, database.Row{"id": query.Int(2)})
	all, err := f.users.AllAsync(ctx).Await(ctx)
	if err != nil || len(all) != 2 {
		t.Errorf("AllAsync() = %v, %v", all, err)
	}
}

type Tally struct {
	Base
	Id    int64
	Count uint64
}

var tallyEntity = schema.MustNew([]schema.Field[Tally]{
	schema.Integer("Id", func(t *Tally) *int64 { return &t.Id }),
	schema.Integer("Count", func(t *Tally) *uint64 { return &t.Count }),
})

func TestModel_SaveRejectsUnrepresentableValues(t *testing.T) {
	f := newFixture(t)
	tallies := MustNewModel(f.registry, tallyEntity)
	ctx := context.Background()

	for _, tally := range []*Tally{{Count: 1 << 63}, {Id: 4, Count: 1<<64 - 1}} {
		if err := tallies.Save(ctx, tally); !errors.Is(err, ErrCoercion) {
			t.Errorf("Save(%d) expected ErrCoercion, got %v", tally.Count, err)
		}
	}
	if n := len(f.conn.Statements()); n != 0 {
		t.Errorf("expected no statements, got %d", n)
	}

	ok := &Tally{Count: 1<<63 - 1}
	if err := tallies.Save(ctx, ok); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	st, _ := f.conn.Last()
	if v := st.Bindings.Map()["count"]; !v.Equal(query.Int(1<<63 - 1)) {
		t.Errorf("count binding = %v", v)
	}
}
