package workspace

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"cirrus/internal/domain"
)

func TestMoveFolder_Cycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mkdir(t, nil, "A")
	b := f.mkdir(t, ptr(a.ID), "B")
	c := f.mkdir(t, ptr(b.ID), "C")

	for _, dest := range []string{a.ID, b.ID, c.ID} {
		if _, err := f.move.MoveFolder(ctx, testOwner, a.ID, ptr(dest)); !errors.Is(err, domain.ErrCyclicMove) {
			t.Errorf("move A under %s: got %v, want ErrCyclicMove", dest, err)
		}
	}

	moved, err := f.move.MoveFolder(ctx, testOwner, c.ID, nil)
	if err != nil {
		t.Fatalf("move C to root: %v", err)
	}
	if moved.ParentID != nil {
		t.Errorf("C parent = %v, want root", *moved.ParentID)
	}

	// B keeps its own parent; only the moved folder changes
	got, err := f.tree.GetFolder(ctx, testOwner, b.ID)
	if err != nil {
		t.Fatalf("GetFolder: %v", err)
	}
	if got.ParentID == nil || *got.ParentID != a.ID {
		t.Errorf("B parent changed: %v", got.ParentID)
	}
}

// TestMoveFolder_NeverFormsCycle applies random moves and checks every
// outcome against a reference parent map.
func TestMoveFolder_NeverFormsCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	const n = 12
	ids := make([]string, 0, n)
	parent := make(map[string]string) // "" = root
	for i := 0; i < n; i++ {
		var p *string
		if i > 0 && rng.Intn(3) > 0 {
			p = ptr(ids[rng.Intn(len(ids))])
		}
		folder := f.mkdir(t, p, string(rune('a'+i)))
		ids = append(ids, folder.ID)
		if p != nil {
			parent[folder.ID] = *p
		} else {
			parent[folder.ID] = ""
		}
	}

	descends := func(candidate, ancestor string) bool {
		for cur := candidate; cur != ""; cur = parent[cur] {
			if cur == ancestor {
				return true
			}
		}
		return false
	}

	for step := 0; step < 300; step++ {
		folderID := ids[rng.Intn(n)]
		var dest *string
		if rng.Intn(5) > 0 {
			dest = ptr(ids[rng.Intn(n)])
		}

		wantCycle := dest != nil && descends(*dest, folderID)
		_, err := f.move.MoveFolder(ctx, testOwner, folderID, dest)

		switch {
		case wantCycle:
			if !errors.Is(err, domain.ErrCyclicMove) {
				t.Fatalf("step %d: got %v, want ErrCyclicMove", step, err)
			}
		case errors.Is(err, domain.ErrNameCollision):
			// Distinct names per level are not guaranteed after random moves
		case err != nil:
			t.Fatalf("step %d: unexpected error %v", step, err)
		default:
			if dest == nil {
				parent[folderID] = ""
			} else {
				parent[folderID] = *dest
			}
		}
	}

	for _, id := range ids {
		seen := map[string]bool{}
		for cur := id; cur != ""; {
			if seen[cur] {
				t.Fatalf("cycle through %s", cur)
			}
			seen[cur] = true
			folder, err := f.store.Folders().GetByID(ctx, testOwner, cur)
			if err != nil {
				t.Fatalf("GetByID: %v", err)
			}
			if folder.ParentID == nil {
				cur = ""
			} else {
				cur = *folder.ParentID
			}
			if cur != parent[folder.ID] {
				t.Fatalf("store parent of %s = %q, reference %q", folder.ID, cur, parent[folder.ID])
			}
		}
	}
}

func TestMoveFolder_Destination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	src := f.mkdir(t, nil, "src")
	bin := f.mkdir(t, nil, "bin")
	inside := f.mkdir(t, ptr(bin.ID), "inside")
	if err := f.trash.SoftDeleteFolder(ctx, testOwner, bin.ID); err != nil {
		t.Fatalf("SoftDeleteFolder: %v", err)
	}

	tests := []struct {
		name string
		dest string
		want error
	}{
		{"missing", "missing", domain.ErrNotFound},
		{"trashed", bin.ID, domain.ErrDestinationTrashed},
		{"beneath trashed", inside.ID, domain.ErrDestinationTrashed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.move.MoveFolder(ctx, testOwner, src.ID, ptr(tt.dest)); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	// Moving a trashed folder is not possible
	if _, err := f.move.MoveFolder(ctx, testOwner, bin.ID, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("move trashed: got %v, want ErrNotFound", err)
	}
}

func TestMoveFolder_NameCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dest := f.mkdir(t, nil, "dest")
	f.mkdir(t, ptr(dest.ID), "same")
	other := f.mkdir(t, nil, "same")

	if _, err := f.move.MoveFolder(ctx, testOwner, other.ID, ptr(dest.ID)); !errors.Is(err, domain.ErrNameCollision) {
		t.Errorf("got %v, want ErrNameCollision", err)
	}

	got, err := f.tree.GetFolder(ctx, testOwner, other.ID)
	if err != nil {
		t.Fatalf("GetFolder: %v", err)
	}
	if got.ParentID != nil {
		t.Error("failed move changed the parent")
	}
}

func TestMoveFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dest := f.mkdir(t, nil, "dest")
	bin := f.mkdir(t, nil, "bin")
	if err := f.trash.SoftDeleteFolder(ctx, testOwner, bin.ID); err != nil {
		t.Fatalf("SoftDeleteFolder: %v", err)
	}
	f.upload(t, ptr(dest.ID), "taken.txt", "1")
	file := f.upload(t, nil, "taken.txt", "2")
	free := f.upload(t, nil, "free.txt", "3")

	if _, err := f.move.MoveFile(ctx, testOwner, file.ID, ptr("missing")); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing dest: got %v, want ErrNotFound", err)
	}
	if _, err := f.move.MoveFile(ctx, testOwner, file.ID, ptr(bin.ID)); !errors.Is(err, domain.ErrDestinationTrashed) {
		t.Errorf("trashed dest: got %v, want ErrDestinationTrashed", err)
	}
	if _, err := f.move.MoveFile(ctx, testOwner, file.ID, ptr(dest.ID)); !errors.Is(err, domain.ErrNameCollision) {
		t.Errorf("collision: got %v, want ErrNameCollision", err)
	}

	moved, err := f.move.MoveFile(ctx, testOwner, free.ID, ptr(dest.ID))
	if err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if moved.FolderID == nil || *moved.FolderID != dest.ID {
		t.Errorf("FolderID = %v, want %s", moved.FolderID, dest.ID)
	}

	back, err := f.move.MoveFile(ctx, testOwner, free.ID, nil)
	if err != nil {
		t.Fatalf("MoveFile to root: %v", err)
	}
	if back.FolderID != nil {
		t.Error("file not at root")
	}

	if err := f.trash.SoftDeleteFile(ctx, testOwner, free.ID); err != nil {
		t.Fatalf("SoftDeleteFile: %v", err)
	}
	if _, err := f.move.MoveFile(ctx, testOwner, free.ID, ptr(dest.ID)); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("trashed file: got %v, want ErrNotFound", err)
	}
}
