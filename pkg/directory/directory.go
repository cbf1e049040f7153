// Package directory provides the approver directory and contract-type taxonomy
// consumed by approver pickers and decision nodes.
package directory

import (
	"slices"
	"strings"
)

// Approver is a user who can be assigned to approval steps.
type Approver struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

// DisplayName renders the approver the way pickers show it.
func (a Approver) DisplayName() string {
	if a.Title == "" {
		return a.Name
	}

	return a.Name + " - " + a.Title
}

// ContractType is an entry of the contract-type taxonomy.
type ContractType struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Directory is a read-only lookup of approvers and contract types.
type Directory struct {
	approvers     []Approver
	contractTypes []ContractType
}

// New creates a directory over the given entries.
func New(approvers []Approver, contractTypes []ContractType) *Directory {
	return &Directory{
		approvers:     slices.Clone(approvers),
		contractTypes: slices.Clone(contractTypes),
	}
}

// Default returns the built-in directory.
func Default() *Directory {
	return New(DefaultApprovers(), DefaultContractTypes())
}

// DefaultApprovers returns the built-in approver list.
func DefaultApprovers() []Approver {
	return []Approver{
		{ID: "john.smith", Name: "John Smith", Title: "Legal Director"},
		{ID: "sarah.johnson", Name: "Sarah Johnson", Title: "CFO"},
		{ID: "mike.davis", Name: "Mike Davis", Title: "Procurement Manager"},
		{ID: "emily.chen", Name: "Emily Chen", Title: "Compliance Officer"},
		{ID: "robert.wilson", Name: "Robert Wilson", Title: "CEO"},
		{ID: "lisa.anderson", Name: "Lisa Anderson", Title: "Contract Manager"},
	}
}

// DefaultContractTypes returns the built-in contract-type taxonomy.
func DefaultContractTypes() []ContractType {
	return []ContractType{
		{ID: "nda", Label: "Non-Disclosure Agreement"},
		{ID: "msa", Label: "Master Service Agreement"},
		{ID: "sow", Label: "Statement of Work"},
		{ID: "vendor", Label: "Vendor Agreement"},
		{ID: "employment", Label: "Employment Contract"},
		{ID: "lease", Label: "Lease Agreement"},
	}
}

// Approvers returns every approver.
func (d *Directory) Approvers() []Approver {
	return slices.Clone(d.approvers)
}

// Approver looks up an approver by id.
func (d *Directory) Approver(id string) (Approver, bool) {
	for _, a := range d.approvers {
		if a.ID == id {
			return a, true
		}
	}

	return Approver{}, false
}

// SearchApprovers matches the query case-insensitively against name and title.
func (d *Directory) SearchApprovers(query string) []Approver {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return d.Approvers()
	}

	matches := make([]Approver, 0)

	for _, a := range d.approvers {
		if strings.Contains(strings.ToLower(a.DisplayName()), query) {
			matches = append(matches, a)
		}
	}

	return matches
}

// ContractTypes returns the taxonomy.
func (d *Directory) ContractTypes() []ContractType {
	return slices.Clone(d.contractTypes)
}

// ContractTypeIDs returns the taxonomy ids in order.
func (d *Directory) ContractTypeIDs() []string {
	ids := make([]string, len(d.contractTypes))
	for i, ct := range d.contractTypes {
		ids[i] = ct.ID
	}

	return ids
}

// HasContractType reports whether id is part of the taxonomy.
func (d *Directory) HasContractType(id string) bool {
	return slices.ContainsFunc(d.contractTypes, func(ct ContractType) bool {
		return ct.ID == id
	})
}
