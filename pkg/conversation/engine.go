// Package conversation drives the per-owner dialog that builds fare alerts.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/PauloCosta30/flight-alert-bot/pkg/airports"
	"github.com/PauloCosta30/flight-alert-bot/pkg/chat"
	"github.com/PauloCosta30/flight-alert-bot/pkg/model"
	"github.com/PauloCosta30/flight-alert-bot/pkg/storage"
)

// State identifies where an owner's dialog currently is.
type State string

const (
	StateIdle             State = "idle"
	StateAwaitingOrigin   State = "awaiting_origin"
	StateAwaitingMaxPrice State = "awaiting_max_price"
	StateAwaitingDateSpec State = "awaiting_date_spec"
	StateAwaitingTripType State = "awaiting_trip_type"
)

// draft accumulates the fields of an alert under construction.
type draft struct {
	state       State
	origin      string
	originCity  string
	destination string
	maxPrice    float64
	dateSpec    model.DateSpec
	tripType    model.TripType
}

// Engine is the per-owner conversation state machine. Dialog state lives only
// here, keyed by owner ID; transitions for a single owner are serialized.
type Engine struct {
	mu     sync.Mutex
	drafts map[int64]*draft

	store   storage.Storage
	catalog *airports.Catalog
	sender  chat.Sender
	logger  *slog.Logger
}

// NewEngine creates a conversation engine.
func NewEngine(store storage.Storage, catalog *airports.Catalog, sender chat.Sender, logger *slog.Logger) *Engine {
	return &Engine{
		drafts:  make(map[int64]*draft),
		store:   store,
		catalog: catalog,
		sender:  sender,
		logger:  logger,
	}
}

// StateOf returns the dialog state for an owner.
func (e *Engine) StateOf(ownerID int64) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if d, ok := e.drafts[ownerID]; ok {
		return d.state
	}
	return StateIdle
}

// HandleCommand processes a structured command from the chat transport.
func (e *Engine) HandleCommand(ctx context.Context, ownerID int64, cmd chat.Command, payload string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch cmd {
	case chat.CmdStart:
		return e.send(ctx, ownerID,
			"✈️ Bot de passagens ativo!\n"+
				"Use /novo_alerta para criar um alerta, /meus_alertas para listar os existentes.")

	case chat.CmdNewAlert:
		return e.startDraft(ctx, ownerID)

	case chat.CmdCancel:
		return e.cancelDraft(ctx, ownerID)

	case chat.CmdListAlerts:
		return e.listAlerts(ctx, ownerID)

	case chat.CmdRemoveAlert:
		return e.changeStatus(ctx, ownerID, payload, model.StatusCancelled,
			"🗑️ Alerta %d removido (%s).")

	case chat.CmdPauseAlert:
		return e.changeStatus(ctx, ownerID, payload, model.StatusPaused,
			"⏸️ Alerta %d pausado (%s).")

	case chat.CmdResumeAlert:
		return e.changeStatus(ctx, ownerID, payload, model.StatusActive,
			"▶️ Alerta %d reativado (%s).")
	}

	return e.send(ctx, ownerID, "Não conheço esse comando. Use /novo_alerta, /meus_alertas ou /cancelar.")
}

// HandleReply processes free text during a dialog. Invalid input re-prompts
// without advancing the state or touching the draft.
func (e *Engine) HandleReply(ctx context.Context, ownerID int64, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, ok := e.drafts[ownerID]
	if !ok {
		return e.send(ctx, ownerID, "Nenhum alerta em criação. Use /novo_alerta para começar.")
	}

	switch d.state {
	case StateAwaitingOrigin:
		r, err := parseRoute(e.catalog, text)
		if err != nil {
			return e.reprompt(ctx, ownerID, err)
		}
		d.origin = r.origin.Code
		d.originCity = r.origin.City
		if r.destination != nil {
			d.destination = r.destination.Code
		}
		d.state = StateAwaitingMaxPrice
		return e.send(ctx, ownerID, "💰 Qual o preço máximo em R$?")

	case StateAwaitingMaxPrice:
		price, err := parsePrice(text)
		if err != nil {
			return e.reprompt(ctx, ownerID, err)
		}
		d.maxPrice = price
		d.state = StateAwaitingDateSpec
		return e.send(ctx, ownerID,
			"📅 Qual a data da viagem?\nEx: 10/01/2026 ou um período: 10/01/2026 a 20/01/2026")

	case StateAwaitingDateSpec:
		spec, err := parseDateSpec(text)
		if err != nil {
			return e.reprompt(ctx, ownerID, err)
		}
		d.dateSpec = spec
		d.state = StateAwaitingTripType
		return e.send(ctx, ownerID, "🔁 Somente ida ou ida e volta?\n1 - somente ida\n2 - ida e volta")

	case StateAwaitingTripType:
		tt, err := parseTripType(text)
		if err != nil {
			return e.reprompt(ctx, ownerID, err)
		}
		d.tripType = tt
		return e.commit(ctx, ownerID, d)
	}

	return e.send(ctx, ownerID, "Nenhum alerta em criação. Use /novo_alerta para começar.")
}

// startDraft opens a new dialog. A stale draft for the same owner is
// discarded, never merged.
func (e *Engine) startDraft(ctx context.Context, ownerID int64) error {
	if _, exists := e.drafts[ownerID]; exists {
		if err := e.send(ctx, ownerID, "O alerta que estava em criação foi descartado."); err != nil {
			return err
		}
	}
	e.drafts[ownerID] = &draft{state: StateAwaitingOrigin}
	return e.send(ctx, ownerID,
		"🛫 Novo alerta iniciado!\n"+
			"De onde você vai sair? Informe a cidade ou o código do aeroporto.\n"+
			"Ex: GRU, São Paulo ou São Paulo > Salvador\n"+
			"(envie /cancelar a qualquer momento para desistir)")
}

func (e *Engine) cancelDraft(ctx context.Context, ownerID int64) error {
	if _, exists := e.drafts[ownerID]; !exists {
		return e.send(ctx, ownerID, "Nenhum alerta em criação para cancelar.")
	}
	delete(e.drafts, ownerID)
	return e.send(ctx, ownerID, "❌ Criação de alerta cancelada.")
}

// commit builds the alert from a completed draft and persists it. On a
// persistence failure the draft stays one step back so the owner can retry.
func (e *Engine) commit(ctx context.Context, ownerID int64, d *draft) error {
	alert := &model.Alert{
		OwnerID:     ownerID,
		Origin:      d.origin,
		OriginCity:  d.originCity,
		Destination: d.destination,
		MaxPrice:    d.maxPrice,
		DateSpec:    d.dateSpec,
		TripType:    d.tripType,
		Status:      model.StatusActive,
	}

	if err := e.store.CreateAlert(ctx, alert); err != nil {
		e.logger.Error("persist alert", "owner_id", ownerID, "error", err)
		d.state = StateAwaitingTripType
		if sendErr := e.send(ctx, ownerID,
			"⚠️ Não consegui salvar o alerta agora. Responda novamente para tentar de novo."); sendErr != nil {
			return sendErr
		}
		return fmt.Errorf("commit alert: %w", err)
	}

	delete(e.drafts, ownerID)
	e.logger.Info("alert created",
		"alert_id", alert.ID,
		"owner_id", ownerID,
		"route", alert.Route(),
		"max_price", alert.MaxPrice,
	)
	return e.send(ctx, ownerID, fmt.Sprintf(
		"✅ Alerta criado!\n%s\n📅 %s\n💰 Até R$ %.2f\n\nVou avisar quando encontrar uma passagem nesse valor.",
		alert.Route(), alert.DateSpec, alert.MaxPrice))
}

func (e *Engine) listAlerts(ctx context.Context, ownerID int64) error {
	alerts, err := e.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list alerts: %w", err)
	}

	visible := visibleAlerts(alerts)
	if len(visible) == 0 {
		return e.send(ctx, ownerID, "Você ainda não tem alertas. Use /novo_alerta para criar um.")
	}

	var b strings.Builder
	b.WriteString("📋 Seus alertas:\n")
	for i, a := range visible {
		fmt.Fprintf(&b, "\n%d. %s — %s — até R$ %.2f", i+1, a.Route(), a.DateSpec, a.MaxPrice)
		if a.Status == model.StatusPaused {
			b.WriteString(" (pausado)")
		}
	}
	b.WriteString("\n\nUse /remover_alerta N, /pausar N ou /retomar N.")
	return e.send(ctx, ownerID, b.String())
}

// changeStatus resolves the 1-based index from the /meus_alertas listing and
// applies the status change.
func (e *Engine) changeStatus(ctx context.Context, ownerID int64, payload string, status model.AlertStatus, confirmFmt string) error {
	n, err := strconv.Atoi(strings.TrimSpace(payload))
	if err != nil || n < 1 {
		return e.send(ctx, ownerID, "Informe o número do alerta como aparece em /meus_alertas.")
	}

	alerts, err := e.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list alerts: %w", err)
	}
	visible := visibleAlerts(alerts)
	if n > len(visible) {
		return e.send(ctx, ownerID, fmt.Sprintf("Você tem %d alerta(s). Veja a lista em /meus_alertas.", len(visible)))
	}

	target := visible[n-1]
	if err := e.store.SetStatus(ctx, target.ID, status); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return e.send(ctx, ownerID, "Esse alerta não existe mais.")
		}
		return fmt.Errorf("set alert status: %w", err)
	}
	return e.send(ctx, ownerID, fmt.Sprintf(confirmFmt, n, target.Route()))
}

// visibleAlerts filters out cancelled alerts, which stay stored as
// tombstones but are hidden from the user.
func visibleAlerts(alerts []model.Alert) []model.Alert {
	var visible []model.Alert
	for _, a := range alerts {
		if a.Status != model.StatusCancelled {
			visible = append(visible, a)
		}
	}
	return visible
}

// reprompt reports a validation problem without advancing the dialog.
func (e *Engine) reprompt(ctx context.Context, ownerID int64, err error) error {
	msg := strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
	return e.send(ctx, ownerID, "🤔 "+msg+". Tente de novo.")
}

func (e *Engine) send(ctx context.Context, ownerID int64, text string) error {
	if err := e.sender.Send(ctx, ownerID, text); err != nil {
		e.logger.Warn("send chat message", "owner_id", ownerID, "error", err)
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
