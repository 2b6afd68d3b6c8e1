package capture

import (
	"context"

	"github.com/fwojciec/chatvault"
)

var _ chatvault.Page = (*SnapshotPage)(nil)

// SnapshotPage is a chatvault.Page over fixed HTML, such as a fetched or
// saved copy of a conversation. It raises no events and accepts controls
// without rendering them.
type SnapshotPage struct {
	PageURL string
	Content string
}

// URL returns the page URL.
func (p *SnapshotPage) URL() string {
	return p.PageURL
}

// HTML returns the snapshot.
func (p *SnapshotPage) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.Content, nil
}

// InjectControl does nothing.
func (p *SnapshotPage) InjectControl(ctx context.Context, containerSelector string, index int, messageID string) error {
	return nil
}

// Events returns a channel that is closed when ctx is done.
func (p *SnapshotPage) Events(ctx context.Context) (<-chan chatvault.PageEvent, error) {
	ch := make(chan chatvault.PageEvent)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}
