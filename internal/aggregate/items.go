package aggregate

// ItemGold holds the gold values of an item.
type ItemGold struct {
	Base  float64 `json:"base"`
	Total float64 `json:"total"`
	Sell  float64 `json:"sell"`
}

// ItemInfo is the static data the accumulator needs about one item.
type ItemInfo struct {
	Name string   `json:"name"`
	Gold ItemGold `json:"gold"`
	From []int    `json:"from"`
}

// ItemResolver looks up static item data by item id.
type ItemResolver interface {
	Resolve(itemID int) (ItemInfo, bool)
}

// StaticItems is an in-memory ItemResolver.
type StaticItems map[int]ItemInfo

// Resolve implements ItemResolver.
func (s StaticItems) Resolve(itemID int) (ItemInfo, bool) {
	info, ok := s[itemID]
	return info, ok
}

// maxComponentDepth bounds recursion through malformed item recipes.
const maxComponentDepth = 8

// itemLedger tracks, per participant, the items whose gold has already been counted:
// items still held and components destroyed by the game. A later purchase that builds
// from them is credited with their total instead of counting their gold twice.
// One ledger lives for exactly one match.
type itemLedger struct {
	items     ItemResolver
	owned     map[int]map[int]int
	destroyed map[int]map[int]int
}

func newItemLedger(items ItemResolver) *itemLedger {
	return &itemLedger{
		items:     items,
		owned:     make(map[int]map[int]int),
		destroyed: make(map[int]map[int]int),
	}
}

// purchase records a purchase and returns the item info and the gold it adds.
// ok is false when the item is unknown; the purchase then counts as zero gold.
func (l *itemLedger) purchase(participant, itemID int) (ItemInfo, float64, bool) {
	info, ok := l.resolve(itemID)
	if !ok {
		increment(l.owned, participant, itemID)
		return ItemInfo{}, 0, false
	}

	var credit float64
	for _, component := range info.From {
		credit += l.consume(participant, component, 0)
	}
	increment(l.owned, participant, itemID)

	return info, info.Gold.Total - credit, true
}

// destroy moves a held item into the destroyed pool. Items that were never bought
// (starting items, consumables granted by the game) are ignored.
func (l *itemLedger) destroy(participant, itemID int) {
	if decrement(l.owned, participant, itemID) {
		increment(l.destroyed, participant, itemID)
	}
}

// sell drops a held item; its gold is never credited to a later purchase.
func (l *itemLedger) sell(participant, itemID int) {
	decrement(l.owned, participant, itemID)
}

// consume takes one already-paid copy of itemID (held or destroyed) and returns its gold.
// When no copy was paid for, it recurses into the component's own recipe.
func (l *itemLedger) consume(participant, itemID, depth int) float64 {
	info, ok := l.resolve(itemID)
	if !ok {
		return 0
	}
	if decrement(l.owned, participant, itemID) || decrement(l.destroyed, participant, itemID) {
		return info.Gold.Total
	}
	if depth >= maxComponentDepth {
		return 0
	}
	var credit float64
	for _, component := range info.From {
		credit += l.consume(participant, component, depth+1)
	}
	return credit
}

func (l *itemLedger) resolve(itemID int) (ItemInfo, bool) {
	if l.items == nil || itemID == 0 {
		return ItemInfo{}, false
	}
	return l.items.Resolve(itemID)
}

func increment(m map[int]map[int]int, participant, itemID int) {
	inner, ok := m[participant]
	if !ok {
		inner = make(map[int]int)
		m[participant] = inner
	}
	inner[itemID]++
}

func decrement(m map[int]map[int]int, participant, itemID int) bool {
	inner := m[participant]
	if inner[itemID] == 0 {
		return false
	}
	if inner[itemID] == 1 {
		delete(inner, itemID)
	} else {
		inner[itemID]--
	}
	return true
}
