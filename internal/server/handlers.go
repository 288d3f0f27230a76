package server

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/vijay-talsangi/tourist-app/types"
)

var validate = validator.New()

type registerRequest struct {
	UPIID string `json:"upiId" validate:"required"`
	Name  string `json:"name" validate:"required"`
}

type recordPaymentRequest struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	Amount     string `json:"amount" validate:"required"`
	UPITxnID   string `json:"upiTxnId" validate:"required"`
}

type composeLinkRequest struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	Amount     string `json:"amount" validate:"required"`
	Note       string `json:"note"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "chainId": s.pay.ChainID().Int64()})
}

func (s *Server) handleWalletState(c *fiber.Ctx) error {
	session := s.pay.Session()
	resp := fiber.Map{"state": session.State()}
	if addr, err := session.Address(); err == nil {
		resp["address"] = addr.Hex()
	}
	return c.JSON(resp)
}

func (s *Server) handleResolveByID(c *fiber.Ctx) error {
	rcv, err := s.pay.ResolveReceiver(c.Context(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	if !rcv.Exists {
		return c.Status(fiber.StatusNotFound).JSON(notFoundBody())
	}
	return c.JSON(rcv)
}

func (s *Server) handleResolveByAlias(c *fiber.Ctx) error {
	upiID := c.Query("upi")
	if upiID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":    types.ErrInvalidIdentifierFormat,
			"message": "query parameter upi is required",
		})
	}

	rcv, err := s.pay.ResolveUPI(c.Context(), upiID)
	if err != nil {
		return s.fail(c, err)
	}
	if !rcv.Exists {
		return c.Status(fiber.StatusNotFound).JSON(notFoundBody())
	}
	return c.JSON(rcv)
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, "upiId and name are required")
	}

	id, err := s.pay.RegisterReceiver(c.Context(), req.UPIID, req.Name)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id.Hex()})
}

func (s *Server) handleRecordPayment(c *fiber.Ctx) error {
	var req recordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, "receiverId, amount and upiTxnId are required")
	}

	id, err := types.ParseReceiverID(req.ReceiverID)
	if err != nil {
		return s.fail(c, err)
	}

	payment, err := s.pay.RecordPayment(c.Context(), id, req.Amount, req.UPITxnID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

func (s *Server) handleComposeLink(c *fiber.Ctx) error {
	var req composeLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, "receiverId and amount are required")
	}

	rcv, err := s.pay.ResolveReceiver(c.Context(), req.ReceiverID)
	if err != nil {
		return s.fail(c, err)
	}

	link, err := s.pay.ComposePaymentLink(rcv, req.Amount, req.Note)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"url": link})
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	payments, err := s.pay.RefreshHistory(c.Context())
	if err != nil {
		return s.fail(c, err)
	}

	caller, _ := s.pay.Session().Address()
	return c.JSON(historyBody(payments, caller))
}

func (s *Server) handlePaymentsOf(c *fiber.Ctx) error {
	raw := c.Params("address")
	if !common.IsHexAddress(raw) {
		return badRequest(c, "address must be a hex address")
	}

	payments, err := s.pay.History().PaymentsOf(c.Context(), common.HexToAddress(raw))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"payments": payments})
}

func (s *Server) handlePaymentsTo(c *fiber.Ctx) error {
	id, err := types.ParseReceiverID(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}

	payments, err := s.pay.History().PaymentsTo(c.Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"payments": payments})
}

type historyEntry struct {
	types.Payment
	Direction types.Direction `json:"direction"`
}

// historyBody attaches the derived direction to each record for display.
func historyBody(payments []types.Payment, caller common.Address) fiber.Map {
	entries := make([]historyEntry, 0, len(payments))
	for _, p := range payments {
		entries = append(entries, historyEntry{Payment: p, Direction: p.DirectionFor(caller)})
	}
	return fiber.Map{"payments": entries}
}

func notFoundBody() fiber.Map {
	return fiber.Map{
		"code":    types.ErrReceiverNotFound,
		"message": "receiver not found",
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msg})
}

// fail maps a typed core error onto an HTTP status; untyped errors are
// treated as upstream failures.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	code := types.ErrorCode(err)

	status := fiber.StatusBadGateway
	switch code {
	case types.ErrInvalidIdentifierFormat, types.ErrInvalidAmount, types.ErrInvalidReference:
		status = fiber.StatusBadRequest
	case types.ErrReceiverNotFound:
		status = fiber.StatusNotFound
	case types.ErrWalletNotConnected, types.ErrWrongChain:
		status = fiber.StatusPreconditionFailed
	case types.ErrOperationInProgress, types.ErrSessionClosed:
		status = fiber.StatusConflict
	case types.ErrUserRejected:
		status = fiber.StatusForbidden
	case types.ErrInsufficientFunds:
		status = fiber.StatusPaymentRequired
	case types.ErrLedgerRejected:
		status = fiber.StatusUnprocessableEntity
	case types.ErrInclusionTimeout:
		status = fiber.StatusGatewayTimeout
	}

	body := fiber.Map{"message": err.Error()}
	if code != "" {
		body["code"] = code
	}

	s.log.Warn("request failed", map[string]any{
		"request_id": c.Locals("request_id"),
		"path":       c.Path(),
		"code":       code,
		"error":      err.Error(),
	})
	return c.Status(status).JSON(body)
}
