// Package rename provides the batch logic that files a folder of media
// into a library according to a naming pattern.
//
// # Manager
//
// The Manager coordinates a run:
//
//  1. Walk the source folder for supported media files
//  2. Read each file's tags and normalize them
//  3. Render the destination path and resolve collisions
//  4. Move or copy the files concurrently (or only report, in dry-run mode)
//  5. Record every relocation in the journal
//  6. Carry cover art and write playlists per destination folder
//  7. Remove source folders left without files
//
// # Basic Usage
//
//	manager := rename.NewManager(settings, func(event rename.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	if err := manager.Initialize(ctx, "/music/incoming"); err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := manager.Start(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// Items are relocated by an errgroup limited to settings.MaxConcurrentItems.
// Destinations are decided during Initialize, in lexical source order, so a
// run's plan does not depend on scheduling.
//
// # Locking
//
// With settings.LockLibrary a lock file at the library root keeps two runs
// from writing the same library; the second gets ErrLocked.
package rename
