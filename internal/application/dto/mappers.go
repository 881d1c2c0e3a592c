package dto

import "github.com/jhoicas/pos-stock-api/internal/domain/entity"

// NewProductResponse construye la salida de un producto.
func NewProductResponse(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	shops := make([]ShopListingResponse, 0, len(p.Shops))
	for _, s := range p.Shops {
		shops = append(shops, ShopListingResponse{
			ShopID:      s.ShopID,
			IsVisible:   s.IsVisible,
			CustomPrice: s.CustomPrice,
			Stock:       s.Stock,
			MinStock:    s.MinStock,
			LowStock:    s.LowStock,
		})
	}
	return &ProductResponse{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Cost:        p.Cost,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		LowStock:    p.LowStock,
		MainStock: MainStockResponse{
			Quantity: p.MainStock.Quantity,
			MinStock: p.MainStock.MinStock,
			LowStock: p.MainStock.LowStock,
		},
		Shops:     shops,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// NewStockMovementResponse construye la salida de un movimiento.
func NewStockMovementResponse(m *entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		Reason:        m.Reason,
		Reference:     m.Reference,
		UserID:        m.UserID,
		ShopID:        m.ShopID,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		CreatedAt:     m.CreatedAt,
	}
}

// NewSaleResponse construye la salida de una venta.
func NewSaleResponse(s *entity.Sale) *SaleResponse {
	if s == nil {
		return nil
	}
	items := make([]SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, SaleItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Total:     it.Total,
		})
	}
	return &SaleResponse{
		ID:            s.ID,
		SaleNumber:    s.SaleNumber,
		CashierID:     s.CashierID,
		ShopID:        s.ShopID,
		Items:         items,
		Subtotal:      s.Subtotal,
		Tax:           s.Tax,
		Discount:      s.Discount,
		Total:         s.Total,
		PaymentMethod: s.PaymentMethod,
		AmountPaid:    s.AmountPaid,
		Change:        s.Change,
		Status:        s.Status,
		CreatedAt:     s.CreatedAt,
		RefundedAt:    s.RefundedAt,
	}
}

// NewPurchaseOrderResponse construye la salida de una orden de compra.
func NewPurchaseOrderResponse(po *entity.PurchaseOrder) *PurchaseOrderResponse {
	if po == nil {
		return nil
	}
	items := make([]PurchaseOrderItemResponse, 0, len(po.Items))
	for _, it := range po.Items {
		items = append(items, PurchaseOrderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
			Total:     it.Total,
		})
	}
	return &PurchaseOrderResponse{
		ID:           po.ID,
		PONumber:     po.PONumber,
		SupplierID:   po.SupplierID,
		Items:        items,
		Subtotal:     po.Subtotal,
		Tax:          po.Tax,
		Total:        po.Total,
		Status:       po.Status,
		OwnerID:      po.OwnerID,
		ShopID:       po.ShopID,
		OrderedBy:    po.OrderedBy,
		OrderDate:    po.OrderDate,
		ReceivedDate: po.ReceivedDate,
		Notes:        po.Notes,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
}

// NewSupplierResponse construye la salida de un proveedor.
func NewSupplierResponse(s *entity.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
		Active:        s.Active,
		OwnerID:       s.OwnerID,
		ShopID:        s.ShopID,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
