package entity

// NewsItem is one headline on the news ticker. Timestamp keeps the upstream
// feed's string format; items are ordered by it lexicographically, which the
// feed guarantees to match chronological order.
type NewsItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
}
