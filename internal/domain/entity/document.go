package entity

// Ciclo de vida de los documentos borrador (despacho, recepción, traslado, ajuste).
const (
	DocumentStatusDraft  = "draft"
	DocumentStatusPosted = "posted"
)

// Tipos de documento numerados por el secuenciador.
const (
	DocTypeShipment   = "SHP"
	DocTypeReceipt    = "RCV"
	DocTypeTransfer   = "TRF"
	DocTypeAdjustment = "ADJ"
	DocTypeInvoice    = "INV"
)
