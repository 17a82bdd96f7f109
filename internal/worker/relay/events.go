package relay

import (
	"context"
	"strings"

	"token-pulse/internal/worker/discovery"
	"token-pulse/internal/worker/model"
	"token-pulse/pkg/bitquery"
	"token-pulse/pkg/utils"

	"go.uber.org/zap"
)

const (
	unknownUsername = "unknown"
	mintAccountName = "mint"
)

func (r *Relay) tradeEvents(data bitquery.WalletTradesData) []*model.TradeEvent {
	entries := data.Solana.DEXTradeByTokens
	events := make([]*model.TradeEvent, 0, len(entries))
	for _, e := range entries {
		address := e.Trade.Account.Address
		ev := &model.TradeEvent{
			WalletAddress: address,
			Username:      unknownUsername,
			Action:        strings.ToLower(e.Trade.Side.Type),
			Amount:        e.Trade.Amount.Ptr(),
			Token: model.TradeToken{
				Name:        e.Trade.Side.Currency.Name,
				Symbol:      e.Trade.Side.Currency.Symbol,
				MintAddress: e.Trade.Side.Currency.MintAddress,
			},
			Time: e.Block.Time,
		}
		if w, ok := r.walletMap[address]; ok {
			ev.Username = w.Username
			ev.UserProfilePic = utils.StringValue(w.ProfilePictureURL)
		}
		events = append(events, ev)
	}
	return events
}

// mintAccount AccountNames 与 Accounts 按下标对应
func mintAccount(inst bitquery.InstructionEntry) *bitquery.AccountToken {
	accounts := inst.Instruction.Accounts
	for i, name := range inst.Instruction.Program.AccountNames {
		if name != mintAccountName || i >= len(accounts) {
			continue
		}
		return accounts[i].Token
	}
	return nil
}

// tokenCreatedEvent 没有 mint 账户时返回 nil；元数据和统计同步补全
func (r *Relay) tokenCreatedEvent(ctx context.Context, inst bitquery.InstructionEntry) *model.TokenCreatedEvent {
	token := mintAccount(inst)
	if token == nil || token.Mint == "" {
		return nil
	}

	ev := &model.TokenCreatedEvent{
		Mint:      token.Mint,
		Owner:     utils.NilIfEmpty(token.Owner),
		BlockTime: inst.Block.Time,
		Slot:      discovery.SlotPtr(inst.Block.Slot),
		FeePayer:  utils.NilIfEmpty(inst.Transaction.FeePayer),
	}
	if args, ok := discovery.ParseMetadataArgs(inst.Instruction.Program.Arguments); ok {
		ev.Name = utils.NilIfEmpty(args.Name)
		ev.Symbol = utils.NilIfEmpty(args.Symbol)
		ev.Uri = utils.NilIfEmpty(args.Uri)
	} else {
		r.tl.Debug("New token without metadata args", zap.String("mint", token.Mint))
	}

	if ev.Uri != nil && r.resolver != nil {
		if meta := r.resolver.Resolve(ctx, *ev.Uri); meta != nil {
			// 链下元数据的名称优先
			if meta.Name != "" {
				ev.Name = &meta.Name
			}
			if meta.Symbol != "" {
				ev.Symbol = &meta.Symbol
			}
			ev.Image = utils.NilIfEmpty(meta.Image)
			ev.CreatedOn = utils.NilIfEmpty(meta.CreatedOn)
			ev.Twitter = utils.NilIfEmpty(meta.Twitter)
			ev.Telegram = utils.NilIfEmpty(meta.Telegram)
			ev.Website = utils.NilIfEmpty(meta.Website)
		}
	}
	if r.analytics != nil {
		ev.Analytics = r.analytics.Get(ctx, token.Mint)
	}
	return ev
}
