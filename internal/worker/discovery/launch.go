package discovery

import (
	"context"
	"fmt"
	"sort"

	"token-pulse/internal/worker/model"
	"token-pulse/pkg/bitquery"
	"token-pulse/pkg/metadata"
	"token-pulse/pkg/utils"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const (
	TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

	methodMigrateMeteoraDamm = "migrate_meteora_damm"
	createMetadataArgName    = "createMetadataAccountArgsV3"
)

var (
	almostBondedMin = decimal.NewFromInt(65)
	almostBondedMax = decimal.NewFromInt(97)
)

// MetadataArgs createMetadataAccountArgsV3 参数中的 data 字段
type MetadataArgs struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Uri    string `json:"uri"`
}

// ParseMetadataArgs 参数缺失或 JSON 非法时 ok=false
func ParseMetadataArgs(args []bitquery.Argument) (MetadataArgs, bool) {
	for _, a := range args {
		if a.Name != createMetadataArgName || a.Value.JSON == "" {
			continue
		}
		var parsed struct {
			Data MetadataArgs `json:"data"`
		}
		if err := sonic.UnmarshalString(a.Value.JSON, &parsed); err != nil {
			return MetadataArgs{}, false
		}
		return parsed.Data, true
	}
	return MetadataArgs{}, false
}

// SlotPtr 缺失返回 nil
func SlotPtr(n bitquery.Number) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.IntPart()
	return &v
}

// ApplyMetadata 元数据中的图片和社交链接写入 token
func ApplyMetadata(t *model.LaunchToken, meta *metadata.Metadata) {
	if meta == nil {
		return
	}
	t.Image = utils.NilIfEmpty(meta.Image)
	t.CreatedOn = utils.NilIfEmpty(meta.CreatedOn)
	t.Twitter = utils.NilIfEmpty(meta.Twitter)
	t.Telegram = utils.NilIfEmpty(meta.Telegram)
	t.Website = utils.NilIfEmpty(meta.Website)
}

// enrichLaunch 并发补全元数据和交易统计，结果顺序不变
func (f *Fetcher) enrichLaunch(ctx context.Context, tokens []*model.LaunchToken) {
	p := pool.New().WithMaxGoroutines(f.concurrency)
	for _, t := range tokens {
		tok := t
		p.Go(func() {
			if tok.Uri != nil && f.resolver != nil {
				ApplyMetadata(tok, f.resolver.Resolve(ctx, *tok.Uri))
			}
			if f.analytics != nil {
				tok.Analytics = f.analytics.Get(ctx, tok.Mint)
			}
		})
	}
	p.Wait()
}

// FetchAlmostBonded 联合曲线进度在 [65, 97] 之间的池子，按进度降序
func (f *Fetcher) FetchAlmostBonded(ctx context.Context) ([]*model.LaunchToken, error) {
	var data bitquery.DEXPoolsData
	if err := instrumentedQuery(ctx, f.querier, "almost_bonded", bitquery.AlmostBondedQuery, nil, &data); err != nil {
		return nil, fmt.Errorf("fetch almost bonded tokens: %w", err)
	}

	tokens := make([]*model.LaunchToken, 0, len(data.Solana.DEXPools))
	for _, p := range data.Solana.DEXPools {
		progress := p.BondingCurveProgress
		if !progress.Valid || progress.Value.LessThan(almostBondedMin) || progress.Value.GreaterThan(almostBondedMax) {
			continue
		}
		base := p.Pool.Market.BaseCurrency
		if base.MintAddress == "" {
			continue
		}
		tokens = append(tokens, &model.LaunchToken{
			Mint:            base.MintAddress,
			Category:        model.CategoryAlmostBonded,
			Name:            utils.NilIfEmpty(base.Name),
			Symbol:          utils.NilIfEmpty(base.Symbol),
			Uri:             utils.NilIfEmpty(base.Uri),
			BlockTime:       utils.NilIfEmpty(p.Block.Time),
			Slot:            SlotPtr(p.Block.Slot),
			BondingProgress: progress.Ptr(),
			ProtocolFamily:  utils.NilIfEmpty(p.Pool.Dex.ProtocolFamily),
		})
	}
	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].BondingProgress.GreaterThan(*tokens[j].BondingProgress)
	})

	f.enrichLaunch(ctx, tokens)
	return tokens, nil
}

// migratedMint 候选账户为 owner 和 program 都是 SPL Token 程序的 mint 账户，
// meteora damm 迁移取第二个候选，其余取第一个
func migratedMint(entry bitquery.InstructionEntry) string {
	var candidates []string
	for _, acc := range entry.Instruction.Accounts {
		tok := acc.Token
		if tok == nil || tok.Mint == "" {
			continue
		}
		if tok.Owner == TokenProgramID && tok.ProgramId == TokenProgramID {
			candidates = append(candidates, tok.Mint)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	if entry.Instruction.Program.Method == methodMigrateMeteoraDamm && len(candidates) > 1 {
		return candidates[1]
	}
	return candidates[0]
}

// FetchMigrated 最近迁移到 DEX 的 token，每个 mint 额外查询一次池子元数据
func (f *Fetcher) FetchMigrated(ctx context.Context) ([]*model.LaunchToken, error) {
	var data bitquery.InstructionsData
	if err := instrumentedQuery(ctx, f.querier, "migrated_tokens", bitquery.MigratedTokensQuery, nil, &data); err != nil {
		return nil, fmt.Errorf("fetch migrated tokens: %w", err)
	}

	var tokens []*model.LaunchToken
	for _, entry := range data.Solana.Instructions {
		mint := migratedMint(entry)
		if mint == "" {
			continue
		}
		tokens = append(tokens, &model.LaunchToken{
			Mint:     mint,
			Category: model.CategoryMigrated,
			Method:   utils.NilIfEmpty(entry.Instruction.Program.Method),
		})
	}

	p := pool.New().WithMaxGoroutines(f.concurrency)
	for _, t := range tokens {
		tok := t
		p.Go(func() {
			f.loadPoolMetadata(ctx, tok)
		})
	}
	p.Wait()

	f.enrichLaunch(ctx, tokens)
	return tokens, nil
}

// loadPoolMetadata 查询失败只记录日志，token 保留但缺少名称等字段
func (f *Fetcher) loadPoolMetadata(ctx context.Context, t *model.LaunchToken) {
	var data bitquery.DEXPoolsData
	err := instrumentedQuery(ctx, f.querier, "token_metadata", bitquery.TokenMetadataQuery,
		map[string]interface{}{"mintAddress": t.Mint}, &data)
	if err != nil {
		f.tl.Warn("Fetch pool metadata failed", zap.String("mint", t.Mint), zap.Error(err))
		return
	}
	if len(data.Solana.DEXPools) == 0 {
		return
	}
	p := data.Solana.DEXPools[0]
	base := p.Pool.Market.BaseCurrency
	t.Name = utils.NilIfEmpty(base.Name)
	t.Symbol = utils.NilIfEmpty(base.Symbol)
	t.Uri = utils.NilIfEmpty(base.Uri)
	t.BlockTime = utils.NilIfEmpty(p.Block.Time)
	t.ProtocolFamily = utils.NilIfEmpty(p.Pool.Dex.ProtocolFamily)
}

// FetchNewlyCreated 最近通过 CreateMetadataAccountV3 创建的 token
func (f *Fetcher) FetchNewlyCreated(ctx context.Context) ([]*model.LaunchToken, error) {
	var data bitquery.InstructionsData
	if err := instrumentedQuery(ctx, f.querier, "newly_created_tokens", bitquery.NewlyCreatedTokensQuery, nil, &data); err != nil {
		return nil, fmt.Errorf("fetch newly created tokens: %w", err)
	}

	var tokens []*model.LaunchToken
	for _, entry := range data.Solana.Instructions {
		mint := firstMint(entry.Instruction.Accounts)
		if mint == "" {
			continue
		}
		args, _ := ParseMetadataArgs(entry.Instruction.Program.Arguments)
		tokens = append(tokens, &model.LaunchToken{
			Mint:      mint,
			Category:  model.CategoryNewlyCreated,
			Name:      utils.NilIfEmpty(args.Name),
			Symbol:    utils.NilIfEmpty(args.Symbol),
			Uri:       utils.NilIfEmpty(args.Uri),
			BlockTime: utils.NilIfEmpty(entry.Block.Time),
			Slot:      SlotPtr(entry.Block.Slot),
			FeePayer:  utils.NilIfEmpty(entry.Transaction.FeePayer),
			Fee:       entry.Transaction.Fee.Ptr(),
			FeeInUSD:  entry.Transaction.FeeInUSD.Ptr(),
		})
	}

	f.enrichLaunch(ctx, tokens)
	return tokens, nil
}

func firstMint(accounts []bitquery.InstructionAccount) string {
	for _, acc := range accounts {
		if acc.Token != nil && acc.Token.Mint != "" {
			return acc.Token.Mint
		}
	}
	return ""
}
