package domain

import (
	"testing"
)

func simpleProduct(id int64, price float64) *Product {
	return &Product{ID: id, Name: "p", Price: price, Type: ProductTypeSimple, Status: ProductStatusActive}
}

func TestCartAddMerge(t *testing.T) {
	c := NewCart()
	p := simpleProduct(1, 12.50)

	c.Add(p, 2, nil)
	c.Add(p, 3, nil)

	if len(c.Lines) != 1 {
		t.Fatalf("expected 1 merged line, got %d", len(c.Lines))
	}
	if c.Lines[0].Quantity != 5 {
		t.Errorf("merged quantity = %d, want 5", c.Lines[0].Quantity)
	}
	if got := c.Subtotal(); got != 62.50 {
		t.Errorf("Subtotal() = %v, want 62.50", got)
	}
}

func TestCartAddSelectionOrderIndependent(t *testing.T) {
	c := NewCart()
	p := &Product{
		ID: 3, Name: "molho", Price: 22, Type: ProductTypeVariable,
		Variations: []VariationGroup{
			{ID: "v", Name: "Volume", Options: map[string]VariationOption{
				"500ml": {SKU: "BBQ-500", PriceModifier: 8},
			}},
			{ID: "e", Name: "Embalagem", Options: map[string]VariationOption{
				"vidro": {SKU: "BBQ-V", PriceModifier: 2},
			}},
		},
	}

	c.Add(p, 1, VariationSelection{"Volume": "500ml", "Embalagem": "vidro"})
	c.Add(p, 1, VariationSelection{"Embalagem": "vidro", "Volume": "500ml"})

	if len(c.Lines) != 1 {
		t.Fatalf("same selection in different order should merge, got %d lines", len(c.Lines))
	}
	if c.Lines[0].Quantity != 2 {
		t.Errorf("quantity = %d, want 2", c.Lines[0].Quantity)
	}
	if c.Lines[0].UnitPrice != 32 {
		t.Errorf("unit price = %v, want 32", c.Lines[0].UnitPrice)
	}
}

func TestCartAddDistinctSelections(t *testing.T) {
	c := NewCart()
	p := variableProduct()

	c.Add(p, 1, VariationSelection{"Volume": "250ml"})
	c.Add(p, 1, VariationSelection{"Volume": "500ml"})

	if len(c.Lines) != 2 {
		t.Fatalf("distinct selections should be distinct lines, got %d", len(c.Lines))
	}
}

func TestCartAddClampsQuantity(t *testing.T) {
	c := NewCart()
	line := c.Add(simpleProduct(1, 10), 0, nil)
	if line.Quantity != 1 {
		t.Errorf("quantity = %d, want 1 (clamped)", line.Quantity)
	}
	line = c.Add(simpleProduct(2, 10), -5, nil)
	if line.Quantity != 1 {
		t.Errorf("negative quantity = %d, want 1 (clamped)", line.Quantity)
	}
}

func TestCartMergeRefreshesUnitPrice(t *testing.T) {
	c := NewCart()
	p := simpleProduct(1, 10)
	c.Add(p, 1, nil)

	p.PromotionalPrice = floatPtr(8)
	c.Add(p, 1, nil)

	if c.Lines[0].UnitPrice != 8 {
		t.Errorf("unit price after merge = %v, want 8 (re-resolved)", c.Lines[0].UnitPrice)
	}
}

func TestCartUpdateQuantity(t *testing.T) {
	c := NewCart()
	p := simpleProduct(1, 10)
	line := c.Add(p, 2, nil)

	if !c.UpdateQuantity(line.Key(), 7) {
		t.Fatal("UpdateQuantity() returned false for existing line")
	}
	if line.Quantity != 7 {
		t.Errorf("quantity = %d, want 7 (set, not added)", line.Quantity)
	}

	// 数量归零等价于删除
	if !c.UpdateQuantity(line.Key(), 0) {
		t.Fatal("UpdateQuantity(0) returned false")
	}
	if !c.IsEmpty() {
		t.Error("cart should be empty after quantity set to 0")
	}

	if c.UpdateQuantity("missing", 1) {
		t.Error("UpdateQuantity() on missing line should return false")
	}
}

func TestCartRemove(t *testing.T) {
	c := NewCart()
	a := c.Add(simpleProduct(1, 10), 1, nil)
	b := c.Add(simpleProduct(2, 20), 1, nil)

	if !c.Remove(a.Key()) {
		t.Fatal("Remove() returned false for existing line")
	}
	if c.Remove(a.Key()) {
		t.Error("Remove() twice should be a no-op returning false")
	}
	if len(c.Lines) != 1 || c.Lines[0].Key() != b.Key() {
		t.Error("remaining line mismatch after Remove")
	}
}

func TestCartTotalsRecomputed(t *testing.T) {
	c := NewCart()
	c.Add(simpleProduct(1, 12.50), 2, nil)
	c.Add(simpleProduct(2, 7.50), 1, nil)

	if got := c.ItemCount(); got != 3 {
		t.Errorf("ItemCount() = %d, want 3", got)
	}
	if got := c.Subtotal(); got != 32.50 {
		t.Errorf("Subtotal() = %v, want 32.50", got)
	}

	c.Clear()
	if got := c.ItemCount(); got != 0 {
		t.Errorf("ItemCount() after Clear = %d, want 0", got)
	}
	if got := c.Subtotal(); got != 0 {
		t.Errorf("Subtotal() after Clear = %v, want 0", got)
	}
}

func TestCartPreservesInsertionOrder(t *testing.T) {
	c := NewCart()
	c.Add(simpleProduct(3, 1), 1, nil)
	c.Add(simpleProduct(1, 1), 1, nil)
	c.Add(simpleProduct(2, 1), 1, nil)

	want := []int64{3, 1, 2}
	for i, line := range c.Lines {
		if line.Product.ProductID != want[i] {
			t.Fatalf("line %d product = %d, want %d", i, line.Product.ProductID, want[i])
		}
	}
}
