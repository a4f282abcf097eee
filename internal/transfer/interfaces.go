package transfer

import (
	"github.com/ytget/stockdesk/internal/catalog"
	"github.com/ytget/stockdesk/internal/model"
)

var _ Transferer = (*Service)(nil)

// Transferer defines the interface for the transfer service.
type Transferer interface {
	SetUpdateCallback(func(model.TransferTask))
	Export(desc *catalog.Descriptor, src Source, path string) (model.TransferTask, error)
	Import(desc *catalog.Descriptor, path string) (model.TransferTask, error)
	SaveReceipt(orderID, path string) (model.TransferTask, error)
	GetTask(taskID string) (model.TransferTask, bool)
	Wait(taskID string) (model.TransferTask, error)
}
