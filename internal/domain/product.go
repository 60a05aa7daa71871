// Package domain 定义商品相关的业务领域模型和核心业务规则。
package domain

import (
	"sort"
	"strings"
	"time"
)

// ProductStatus 定义商品状态类型
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"   // 正常销售
	ProductStatusInactive ProductStatus = "inactive" // 暂停销售
	ProductStatusDeleted  ProductStatus = "deleted"  // 已删除
)

// ProductType 定义商品类型：简单商品或带变体的商品
type ProductType string

const (
	ProductTypeSimple   ProductType = "simple"   // 无变体
	ProductTypeVariable ProductType = "variable" // 带变体（如规格、容量）
)

// VariationOption 表示变体组中的一个可选项
type VariationOption struct {
	SKU           string  `json:"sku"`
	PriceModifier float64 `json:"price_modifier"` // 叠加到基础价上的价格修正（可为负）
	Stock         int     `json:"stock"`
	Image         string  `json:"image,omitempty"`
}

// VariationGroup 表示商品的一个变体维度（如"容量"），
// Options 以选项标签为键（如 "250ml"、"500ml"）。
type VariationGroup struct {
	ID      string                     `json:"id"`
	Name    string                     `json:"name"`
	Options map[string]VariationOption `json:"options"`
}

// VariationSelection 表示顾客的变体选择：变体组名 -> 选项标签。
// 简单商品对应空选择。
type VariationSelection map[string]string

// CanonicalKey 返回选择的规范化表示。
// 由于map遍历顺序不定，同一选择可能以不同顺序表达，
// 这里按组名排序后序列化，保证同一选择得到同一键。
func (s VariationSelection) CanonicalKey() string {
	if len(s) == 0 {
		return ""
	}
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+s[name])
	}
	return strings.Join(parts, ";")
}

// Product 表示商品领域模型
type Product struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	Price            float64          `json:"price"`
	PromotionalPrice *float64         `json:"promotional_price"`
	CategoryID       *int64           `json:"category_id"`
	Stock            int              `json:"stock"`
	Rating           float64          `json:"rating"`
	ReviewCount      int              `json:"review_count"`
	Images           []string         `json:"images"`
	Type             ProductType      `json:"type"`
	Variations       []VariationGroup `json:"variations,omitempty"`
	Status           ProductStatus    `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// IsAvailable 判断商品是否可售
func (p *Product) IsAvailable() bool {
	return p.Status == ProductStatusActive
}

// HasVariations 判断商品是否带有效变体
func (p *Product) HasVariations() bool {
	return p.Type == ProductTypeVariable && len(p.Variations) > 0
}

// EffectivePrice 返回生效单价：有促销价时取促销价，否则取基础价
func (p *Product) EffectivePrice() float64 {
	if p.PromotionalPrice != nil {
		return *p.PromotionalPrice
	}
	return p.Price
}

// ResolveUnitPrice 根据变体选择解析商品单价。
//
// 简单商品：促销价优先，否则基础价；传入的选择被忽略。
// 变体商品：以基础价为起点（即使存在促销价——线上行为如此，保持一致），
// 逐组叠加所选选项的价格修正；选择中缺失的组贡献为0。
// 选择不完整时不报错，由调用方在加入购物车前要求完整选择。
// 结果不会为负，修正叠加后低于0时取0。
func (p *Product) ResolveUnitPrice(selection VariationSelection) float64 {
	if !p.HasVariations() {
		return p.EffectivePrice()
	}

	total := p.Price
	for _, group := range p.Variations {
		label, ok := selection[group.Name]
		if !ok {
			continue
		}
		option, ok := group.Options[label]
		if !ok {
			continue
		}
		total += option.PriceModifier
	}

	if total < 0 {
		return 0
	}
	return total
}

// SelectionComplete 判断选择是否覆盖了所有变体组且选项有效
func (p *Product) SelectionComplete(selection VariationSelection) bool {
	if !p.HasVariations() {
		return true
	}
	for _, group := range p.Variations {
		label, ok := selection[group.Name]
		if !ok {
			return false
		}
		if _, ok := group.Options[label]; !ok {
			return false
		}
	}
	return true
}

// CreateProductRequest 表示创建商品请求
type CreateProductRequest struct {
	Name             string           `json:"name" binding:"required,min=1,max=255"`
	Description      string           `json:"description"`
	Price            float64          `json:"price" binding:"required,gt=0"`
	PromotionalPrice *float64         `json:"promotional_price"`
	CategoryID       *int64           `json:"category_id"`
	Stock            int              `json:"stock"`
	Images           []string         `json:"images"`
	Type             ProductType      `json:"type"`
	Variations       []VariationGroup `json:"variations"`
}

// UpdateProductRequest 表示更新商品请求
type UpdateProductRequest struct {
	Name             *string           `json:"name"`
	Description      *string           `json:"description"`
	Price            *float64          `json:"price"`
	PromotionalPrice *float64          `json:"promotional_price"`
	ClearPromotion   bool              `json:"clear_promotion"`
	CategoryID       *int64            `json:"category_id"`
	Stock            *int              `json:"stock"`
	Images           []string          `json:"images"`
	Type             *ProductType      `json:"type"`
	Variations       *[]VariationGroup `json:"variations"`
	Status           *ProductStatus    `json:"status"`
}

// ProductListRequest 表示商品列表查询请求
type ProductListRequest struct {
	Page       int            `json:"page"`        // 页码，从1开始
	PageSize   int            `json:"page_size"`   // 每页大小
	Status     *ProductStatus `json:"status"`      // 商品状态过滤
	CategoryID *int64         `json:"category_id"` // 分类过滤
	Keyword    *string        `json:"keyword"`     // 关键词搜索
	SortBy     *string        `json:"sort_by"`     // 排序字段: price, rating, created_at, name
	SortOrder  *string        `json:"sort_order"`  // 排序顺序: asc, desc
}

// ProductListResponse 表示商品列表查询响应
type ProductListResponse struct {
	Products []*Product `json:"products"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}
