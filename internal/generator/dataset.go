package generator

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanshika/creditguardian/internal/service"
)

// Dataset is the on-disk seed format.
type Dataset struct {
	Accounts []AccountRecord `yaml:"accounts"`
}

// AccountRecord is one user with everything shown on their dashboard.
type AccountRecord struct {
	ID            string               `yaml:"id"`
	FullName      string               `yaml:"fullName"`
	Email         string               `yaml:"email"`
	CreditScore   int                  `yaml:"creditScore"`
	CreatedAt     *time.Time           `yaml:"createdAt,omitempty"`
	Cards         []CardRecord         `yaml:"cards"`
	Notifications []NotificationRecord `yaml:"notifications,omitempty"`
	Deposits      []DepositRecord      `yaml:"deposits,omitempty"`
}

type CardRecord struct {
	ID      string  `yaml:"id"`
	Name    string  `yaml:"name"`
	Balance float64 `yaml:"balance"`
	Limit   float64 `yaml:"limit"`
	APR     float64 `yaml:"apr"`
}

type NotificationRecord struct {
	ID        string     `yaml:"id"`
	Title     string     `yaml:"title"`
	Message   string     `yaml:"message"`
	Kind      string     `yaml:"kind"`
	Read      bool       `yaml:"read"`
	CreatedAt *time.Time `yaml:"createdAt,omitempty"`
}

type DepositRecord struct {
	ID          string     `yaml:"id"`
	Source      string     `yaml:"source"`
	Amount      float64    `yaml:"amount"`
	DepositedAt *time.Time `yaml:"depositedAt,omitempty"`
}

// WriteDataset serializes the dataset as YAML at path, creating parent directories.
func WriteDataset(dataset Dataset, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := EncodeDataset(file, dataset); err != nil {
		return fmt.Errorf("encode yaml for %s: %w", path, err)
	}
	return nil
}

// EncodeDataset writes dataset as YAML to w.
func EncodeDataset(w io.Writer, dataset Dataset) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(dataset); err != nil {
		return err
	}
	return encoder.Close()
}

// ReadDataset loads a YAML dataset. Unknown keys are rejected.
func ReadDataset(path string) (Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	dataset, err := DecodeDataset(file)
	if err != nil {
		return Dataset{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return dataset, nil
}

// DecodeDataset parses a YAML dataset from r.
func DecodeDataset(r io.Reader) (Dataset, error) {
	var dataset Dataset
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&dataset); err != nil {
		if errors.Is(err, io.EOF) {
			return Dataset{}, nil
		}
		return Dataset{}, err
	}
	return dataset, nil
}

// Inputs converts the dataset into service ingestion inputs.
func (d Dataset) Inputs() []service.AccountInput {
	inputs := make([]service.AccountInput, 0, len(d.Accounts))
	for _, a := range d.Accounts {
		inputs = append(inputs, a.Input())
	}
	return inputs
}

// Input converts one record into a service input.
func (a AccountRecord) Input() service.AccountInput {
	in := service.AccountInput{
		ID:          a.ID,
		FullName:    a.FullName,
		Email:       a.Email,
		CreditScore: a.CreditScore,
		CreatedAt:   a.CreatedAt,
	}
	for _, c := range a.Cards {
		in.Cards = append(in.Cards, service.CardInput{
			ID:      c.ID,
			Name:    c.Name,
			Balance: c.Balance,
			Limit:   c.Limit,
			APR:     c.APR,
		})
	}
	for _, n := range a.Notifications {
		in.Notifications = append(in.Notifications, service.NotificationInput{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Kind:      n.Kind,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	for _, d := range a.Deposits {
		in.Deposits = append(in.Deposits, service.DepositInput{
			ID:          d.ID,
			Source:      d.Source,
			Amount:      d.Amount,
			DepositedAt: d.DepositedAt,
		})
	}
	return in
}
