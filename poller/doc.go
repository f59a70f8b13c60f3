// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package poller keeps snapshots of remote read endpoints fresh.

A Poller fetches immediately on Start and then on a fixed interval. Each
Start begins a new generation; responses issued in an earlier generation are
discarded when they arrive, so a snapshot is only ever associated with the key
that was active when its request went out.

Failed fetches never replace the last good snapshot. Loading is true only
until the first fetch of a generation completes.

Two instances exist:

	dash := poller.NewDashboard(ctx, client)     // every 5s, keyed by referral code
	board := poller.NewLeaderboard(ctx, client)  // every 30s

	board.Start(struct{}{})
	dash.Start("ABC123")
*/
package poller
