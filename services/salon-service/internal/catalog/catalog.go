package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownItem   = errors.New("unknown menu item")
	ErrDuplicateItem = errors.New("duplicate menu item")
)

type Category string

const (
	CategoryAll       Category = "ALL"
	CategoryCut       Category = "CUT"
	CategoryColor     Category = "COLOR"
	CategoryPerm      Category = "PERM"
	CategoryTreatment Category = "TREATMENT"
	CategoryOther     Category = "OTHER"
)

type CategoryInfo struct {
	ID    Category
	Label string
}

// MenuItem prices are tax-inclusive yen, durations minutes.
type MenuItem struct {
	ID          int
	Category    Category
	Name        string
	Price       int
	Duration    int
	Description string
}

var menu = []MenuItem{
	{ID: 1, Category: CategoryCut, Name: "カット", Price: 5500, Duration: 60, Description: "シャンプー・ブロー込み"},
	{ID: 2, Category: CategoryCut, Name: "メンズカット", Price: 4500, Duration: 45, Description: "シャンプー・スタイリング込み"},
	{ID: 3, Category: CategoryCut, Name: "前髪カット", Price: 1100, Duration: 15, Description: "前髪のみ"},
	{ID: 4, Category: CategoryColor, Name: "カラー", Price: 7700, Duration: 90, Description: "リタッチ〜フルカラー"},
	{ID: 5, Category: CategoryColor, Name: "ハイライト", Price: 5500, Duration: 60, Description: "部分ハイライト"},
	{ID: 6, Category: CategoryColor, Name: "ダブルカラー", Price: 13200, Duration: 120, Description: "ブリーチ＋カラー"},
	{ID: 7, Category: CategoryPerm, Name: "パーマ", Price: 8800, Duration: 90, Description: "コールド/デジタル"},
	{ID: 8, Category: CategoryTreatment, Name: "ヘッドスパ", Price: 4400, Duration: 40, Description: "頭皮ケア＆リラックス"},
	{ID: 9, Category: CategoryTreatment, Name: "トリートメント", Price: 3300, Duration: 30, Description: "ダメージ補修"},
	{ID: 10, Category: CategoryOther, Name: "眉カット", Price: 1100, Duration: 15, Description: "眉デザイン"},
}

var categories = []CategoryInfo{
	{ID: CategoryAll, Label: "すべて"},
	{ID: CategoryCut, Label: "カット"},
	{ID: CategoryColor, Label: "カラー"},
	{ID: CategoryPerm, Label: "パーマ"},
	{ID: CategoryTreatment, Label: "ケア"},
	{ID: CategoryOther, Label: "その他"},
}

// Items returns a copy of the menu in display order.
func Items() []MenuItem {
	return append([]MenuItem(nil), menu...)
}

func Categories() []CategoryInfo {
	return append([]CategoryInfo(nil), categories...)
}

// ByCategory filters the menu; CategoryAll returns everything.
func ByCategory(c Category) []MenuItem {
	if c == CategoryAll || c == "" {
		return Items()
	}
	var out []MenuItem
	for _, it := range menu {
		if it.Category == c {
			out = append(out, it)
		}
	}
	return out
}

func Lookup(id int) (MenuItem, bool) {
	for _, it := range menu {
		if it.ID == id {
			return it, true
		}
	}
	return MenuItem{}, false
}

// Selection is a set of menu items booked together back to back.
type Selection struct {
	Items         []MenuItem
	TotalDuration int
	TotalPrice    int
}

func (s Selection) IDs() []int {
	ids := make([]int, len(s.Items))
	for i, it := range s.Items {
		ids[i] = it.ID
	}
	return ids
}

// Select resolves ids in the given order and sums duration and price.
func Select(ids []int) (Selection, error) {
	sel := Selection{Items: make([]MenuItem, 0, len(ids))}
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return Selection{}, fmt.Errorf("%w: %d", ErrDuplicateItem, id)
		}
		seen[id] = struct{}{}
		it, ok := Lookup(id)
		if !ok {
			return Selection{}, fmt.Errorf("%w: %d", ErrUnknownItem, id)
		}
		sel.Items = append(sel.Items, it)
		sel.TotalDuration += it.Duration
		sel.TotalPrice += it.Price
	}
	return sel, nil
}
