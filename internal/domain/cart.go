// Package domain 定义购物车领域模型。
// 购物车是便利结构而非账务记录：非法输入做归一化处理而不报错，
// 硬校验留给结算层。
package domain

import "fmt"

// ProductSnapshot 表示加入购物车时的商品快照。
// 快照在加入时捕获，不跟随商品后续变更。
type ProductSnapshot struct {
	ProductID        int64    `json:"product_id"`
	Name             string   `json:"name"`
	Price            float64  `json:"price"`
	PromotionalPrice *float64 `json:"promotional_price,omitempty"`
	Images           []string `json:"images,omitempty"`
}

// CartLine 表示购物车中的一行
type CartLine struct {
	Product   ProductSnapshot    `json:"product"`
	Selection VariationSelection `json:"selection,omitempty"`
	Quantity  int                `json:"quantity"`
	UnitPrice float64            `json:"unit_price"` // 最近一次数量/变体变更时解析的单价
}

// Key 返回行的唯一键：商品ID + 规范化的变体选择
func (l *CartLine) Key() string {
	return LineKey(l.Product.ProductID, l.Selection)
}

// LineTotal 返回行小计
func (l *CartLine) LineTotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// LineKey 根据商品ID和变体选择生成行键。
// 同一商品、同一选择（无论字段顺序如何表达）得到同一键。
func LineKey(productID int64, selection VariationSelection) string {
	return fmt.Sprintf("%d|%s", productID, selection.CanonicalKey())
}

// Cart 表示一个会话的购物车。
// 行按插入顺序保存，该顺序即展示顺序。
type Cart struct {
	Lines []*CartLine `json:"lines"`
}

// NewCart 创建空购物车
func NewCart() *Cart {
	return &Cart{}
}

// Find 根据行键查找行，不存在时返回nil
func (c *Cart) Find(key string) *CartLine {
	for _, line := range c.Lines {
		if line.Key() == key {
			return line
		}
	}
	return nil
}

// Add 将商品加入购物车。
// 数量小于等于0时按1处理。已有相同商品+选择的行时合并数量，
// 并重新解析单价（商品价格可能已变化）；否则在末尾追加新行。
// 返回受影响的行。
func (c *Cart) Add(p *Product, quantity int, selection VariationSelection) *CartLine {
	if quantity <= 0 {
		quantity = 1
	}

	unitPrice := p.ResolveUnitPrice(selection)
	key := LineKey(p.ID, selection)

	if line := c.Find(key); line != nil {
		line.Quantity += quantity
		line.UnitPrice = unitPrice
		return line
	}

	line := &CartLine{
		Product: ProductSnapshot{
			ProductID:        p.ID,
			Name:             p.Name,
			Price:            p.Price,
			PromotionalPrice: p.PromotionalPrice,
			Images:           p.Images,
		},
		Selection: selection,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
	c.Lines = append(c.Lines, line)
	return line
}

// UpdateQuantity 将行数量设置为给定值（非增量）。
// 数量小于等于0时等价于删除该行。行不存在时返回false。
func (c *Cart) UpdateQuantity(key string, quantity int) bool {
	if quantity <= 0 {
		return c.Remove(key)
	}
	line := c.Find(key)
	if line == nil {
		return false
	}
	line.Quantity = quantity
	return true
}

// Remove 删除指定行。行不存在时不报错，返回false。
func (c *Cart) Remove(key string) bool {
	for i, line := range c.Lines {
		if line.Key() == key {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// Clear 清空所有行
func (c *Cart) Clear() {
	c.Lines = nil
}

// IsEmpty 判断购物车是否为空
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ItemCount 返回所有行数量之和。每次调用重新计算，不做缓存。
func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// Subtotal 返回所有行小计之和。每次调用重新计算，不做缓存。
func (c *Cart) Subtotal() float64 {
	total := 0.0
	for _, line := range c.Lines {
		total += line.LineTotal()
	}
	return total
}
