package llm

import (
	"context"

	"github.com/Wooodyy/mappingdata/internal/entity"
)

// TextClassifier is the best-effort port used for currency and party
// detection over a document's flattened text. Implementations may call out
// to a model; callers always apply a static fallback on error.
type TextClassifier interface {
	DetectCurrency(ctx context.Context, doc string) (string, error)
	DetectSender(ctx context.Context, doc string) (string, error)
	DetectRecipient(ctx context.Context, doc string) (string, error)
}

// AlignedContainers is the aligner's reply: both sides reordered so that
// matching records occupy the same positions.
type AlignedContainers struct {
	Invoice     *entity.ContainerMap `json:"sorted_invoice_containers"`
	Declaration *entity.ContainerMap `json:"sorted_xml_containers"`
}

// ContainerAligner reorders two container collections by record similarity.
// The reconciliation engine validates the reply and falls back to its
// deterministic sort when the reply is unusable.
type ContainerAligner interface {
	SortContainers(ctx context.Context, invoice, declaration *entity.ContainerMap) (*AlignedContainers, error)
}
