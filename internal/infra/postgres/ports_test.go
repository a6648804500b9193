package postgres

import "booking-service/internal/domain"

var (
	_ domain.Transactor            = (*TxManager)(nil)
	_ domain.ResourceRepository    = (*ResourceRepository)(nil)
	_ domain.ReservationRepository = (*ReservationRepository)(nil)
	_ domain.CatalogRepository     = (*CatalogRepository)(nil)
	_ domain.ClientRepository      = (*ClientRepository)(nil)
)
