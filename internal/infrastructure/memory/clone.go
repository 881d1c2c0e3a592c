package memory

import "github.com/jhoicas/pos-stock-api/internal/domain/entity"

func cloneProduct(p *entity.Product) *entity.Product {
	if p == nil {
		return nil
	}
	c := *p
	if p.OwnerID != nil {
		owner := *p.OwnerID
		c.OwnerID = &owner
	}
	c.Shops = make([]entity.ShopListing, len(p.Shops))
	for i, l := range p.Shops {
		c.Shops[i] = cloneListing(l)
	}
	return &c
}

func cloneListing(l entity.ShopListing) entity.ShopListing {
	c := l
	if l.CustomPrice != nil {
		v := *l.CustomPrice
		c.CustomPrice = &v
	}
	if l.Stock != nil {
		v := *l.Stock
		c.Stock = &v
	}
	if l.MinStock != nil {
		v := *l.MinStock
		c.MinStock = &v
	}
	if l.LowStock != nil {
		v := *l.LowStock
		c.LowStock = &v
	}
	return c
}

func cloneSale(s *entity.Sale) *entity.Sale {
	if s == nil {
		return nil
	}
	c := *s
	c.Items = append([]entity.SaleItem(nil), s.Items...)
	if s.RefundedAt != nil {
		t := *s.RefundedAt
		c.RefundedAt = &t
	}
	return &c
}

func clonePurchaseOrder(po *entity.PurchaseOrder) *entity.PurchaseOrder {
	if po == nil {
		return nil
	}
	c := *po
	c.Items = append([]entity.PurchaseOrderItem(nil), po.Items...)
	if po.ReceivedDate != nil {
		t := *po.ReceivedDate
		c.ReceivedDate = &t
	}
	return &c
}

func sameOwner(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
