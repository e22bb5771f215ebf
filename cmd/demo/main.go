package main

import (
	"fmt"
	"log"
	"os"

	"github.com/yiblet/cliphist/internal/clipboard"
	"github.com/yiblet/cliphist/internal/clipboard/mockboard"
	"github.com/yiblet/cliphist/internal/dispatch"
	"github.com/yiblet/cliphist/internal/history"
	"github.com/yiblet/cliphist/internal/logging"
	"github.com/yiblet/cliphist/internal/manager"
	"github.com/yiblet/cliphist/internal/store/memstore"
)

func main() {
	fmt.Println("cliphist History Demo")

	logger := logging.New(os.Stderr, logging.FormatAuto, logging.ParseLevel("warn"))

	// In-memory persistence and clipboard
	st := memstore.NewMemoryStore()
	board := mockboard.New()
	mgr, err := manager.New(manager.Options{
		Persister:       st,
		DefaultCapacity: 3,
		Logger:          logger,
	})
	if err != nil {
		log.Fatalf("Failed to create history manager: %v", err)
	}
	defer mgr.Close()

	copies := []clipboard.Snapshot{
		{Kind: history.KindText, Data: []byte("Hello, World! This is the first copy.")},
		{Kind: history.KindText, Data: []byte("package main\n\nfunc main() {}\n")},
		{Kind: history.KindText, Data: []byte("Hello, World! This is the first copy.")},
		{Kind: history.KindImage, Data: []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}},
		{Kind: history.KindText, Data: []byte("SELECT * FROM users ORDER BY created_at DESC LIMIT 10;")},
	}

	fmt.Println("Simulating clipboard changes:")
	for i, snap := range copies {
		board.Write(snap.Kind, snap.Data)
		res, recorded, err := mgr.Poll(board)
		if err != nil {
			log.Printf("Failed to record copy %d: %v", i, err)
			continue
		}
		if !recorded {
			continue
		}
		fmt.Printf("%d. %-9s %s\n", i+1, res.Outcome, res.Entry.Preview(history.PreviewLength))
		for _, e := range res.Evicted {
			fmt.Printf("   evicted %s\n", e.Preview(history.PreviewLength))
		}
	}

	fmt.Printf("\nHistory (%d/%d, newest first):\n", mgr.Len(), mgr.Capacity())
	for i, e := range mgr.Entries() {
		fmt.Printf("%d. [%s] %s\n", i, e.CapturedAt().Format("15:04:05.000000"), e.Preview(history.PreviewLength))
	}

	d := dispatch.New(mgr, board, dispatch.WithPaster(board), dispatch.WithLogger(logger))

	e, err := d.Restore(mgr.Len() - 1)
	if err != nil {
		log.Fatalf("Failed to restore: %v", err)
	}
	fmt.Printf("\nRestored oldest entry: %s\n", e.Preview(history.PreviewLength))

	if err := d.Dispatch(dispatch.ActionPasteLast); err != nil {
		log.Fatalf("Failed to paste: %v", err)
	}
	snap, _ := board.Snapshot()
	fmt.Printf("Pasted most recent (%d keystroke): %s\n", board.Pastes(), snap)

	if err := d.Dispatch(dispatch.ActionClearHistory); err != nil {
		log.Fatalf("Failed to clear: %v", err)
	}
	fmt.Printf("\nCleared. History size: %d, saves: %d\n", mgr.Len(), st.Saves())
}
