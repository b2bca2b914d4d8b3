package flow

// Carousel cycles through the reasons list one slide at a time. Navigation
// wraps in both directions and is a no-op when the list is empty.
type Carousel struct {
	items []string
	index int
}

// NewCarousel starts at the first item.
func NewCarousel(items []string) *Carousel {
	c := &Carousel{}
	c.SetItems(items)
	return c
}

// SetItems replaces the list, keeping the current index when it is still in
// range.
func (c *Carousel) SetItems(items []string) {
	c.items = append([]string(nil), items...)
	if c.index >= len(c.items) {
		c.index = 0
	}
}

func (c *Carousel) Next() {
	if len(c.items) == 0 {
		return
	}
	c.index = (c.index + 1) % len(c.items)
}

func (c *Carousel) Prev() {
	if len(c.items) == 0 {
		return
	}
	c.index = (c.index - 1 + len(c.items)) % len(c.items)
}

// Current returns the visible item, or false when there is nothing to show.
func (c *Carousel) Current() (string, bool) {
	if len(c.items) == 0 {
		return "", false
	}
	return c.items[c.index], true
}

func (c *Carousel) Index() int { return c.index }

func (c *Carousel) Len() int { return len(c.items) }
