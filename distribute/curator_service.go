package distribute

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"medals_reward/config"
	"medals_reward/db"
	"medals_reward/logs"
	"medals_reward/reward"
	"medals_reward/types"
	"medals_reward/utils"
)

type CuratorVoteService struct {
	logger     *logrus.Logger
	clock      clockwork.Clock
	processor  *reward.CuratorProcessor
	stopCh     chan bool
	isHandling bool
}

func NewCuratorVoteService(clock clockwork.Clock) *CuratorVoteService {
	return &CuratorVoteService{
		logger:    logs.GetLogger(),
		clock:     clock,
		processor: reward.NewCuratorProcessor(config.GetCuratorConfig()),
	}
}

func (s *CuratorVoteService) StartVoteService() {
	s.stopCh = make(chan bool)
	ticker := time.NewTicker(time.Duration(config.VoteSyncInterval) * time.Second)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.processRound()
			case <-s.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

func (s *CuratorVoteService) StopVoteService() {
	if s.stopCh == nil {
		return
	}
	s.stopCh <- true
	close(s.stopCh)
	s.stopCh = nil
}

func (s *CuratorVoteService) processRound() {
	if s.isHandling {
		s.logger.Infoln("processRound: last round vote processing not finish")
		return
	}
	s.isHandling = true
	defer func() {
		s.isHandling = false
	}()
	if err := s.ProcessNewVotes(); err != nil {
		s.logger.Errorf("processRound: fail to process curator votes, the error is %v", err)
	}
}

// ProcessNewVotes handles one batch of vote events past the checkpoint: the
// pure pre-filter and cap stages run on caller-loaded state, and everything
// they produce (rewards, outbox transfers, processed ids, usage counters,
// checkpoint) is persisted in a single transaction. A crash before the commit
// replays the whole batch next round; the processed-vote set makes the replay
// harmless.
func (s *CuratorVoteService) ProcessNewVotes() error {
	now := s.clock.Now().UTC()
	checkpoint, err := db.GetCheckpoint(types.CheckpointCuratorVotes)
	if err != nil {
		return err
	}
	events, err := db.GetVoteEventsSince(checkpoint, config.VoteBatchLimit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		s.logger.Debugln("ProcessNewVotes: no new vote events")
		return nil
	}
	if len(events) == config.VoteBatchLimit {
		boundary := events[len(events)-1].BlockNum
		trimmed := completeBlocks(events)
		if len(trimmed) > 0 {
			events = trimmed
		} else {
			// one block carries more votes than a whole batch; read it in full
			// so the checkpoint never lands inside it
			events, err = db.GetVoteEventsByBlock(boundary)
			if err != nil {
				return err
			}
		}
	}
	s.logger.Infof("ProcessNewVotes: fetched %v vote events after block %v", len(events), checkpoint)

	votes := make([]reward.CuratorVote, 0, len(events))
	lastBlock := checkpoint
	for _, ev := range events {
		votes = append(votes, reward.CuratorVote{
			Voter:         ev.Voter,
			Author:        ev.Author,
			Permlink:      ev.Permlink,
			Weight:        ev.Weight,
			Timestamp:     time.Unix(ev.Time, 0).UTC(),
			BlockNum:      ev.BlockNum,
			TransactionId: ev.TrxId,
		})
		if ev.BlockNum > lastBlock {
			lastBlock = ev.BlockNum
		}
	}

	ids := make([]string, 0, len(votes))
	for _, v := range votes {
		ids = append(ids, reward.VoteUniqueId(v))
	}
	processedIds, err := db.GetProcessedVoteIds(ids)
	if err != nil {
		return err
	}
	filtered := s.processor.FilterVotes(votes, processedIds)

	date := now.Format("2006-01-02")
	usageRows, err := db.GetCuratorDailyUsageByDate(date)
	if err != nil {
		return err
	}
	counts := make(map[string]int, len(usageRows))
	priorRewarded := make(map[string]string, len(usageRows))
	for _, u := range usageRows {
		counts[u.Curator] = u.VotesUsed
		priorRewarded[u.Curator] = u.TotalRewarded
	}

	result := s.processor.Process(filtered, counts, now)
	for _, skip := range result.Skipped {
		s.logger.Infof("ProcessNewVotes: skip vote %v: %v", reward.VoteUniqueId(skip.Vote), skip.Reason)
	}

	rewards, outbox := s.buildRewardRecords(result.Rewards, now)
	processed := make([]*types.ProcessedVote, 0, len(filtered))
	for _, v := range filtered {
		processed = append(processed, &types.ProcessedVote{
			VoteId:  reward.VoteUniqueId(v),
			Curator: v.Voter,
			Time:    now.Unix(),
		})
	}
	usage := s.buildUsageRows(result, priorRewarded, date, now)

	err = db.SaveCuratorResults(rewards, outbox, processed, usage, &types.SyncCheckpoint{
		Name:     types.CheckpointCuratorVotes,
		BlockNum: lastBlock,
		Time:     now.Unix(),
	})
	if err != nil {
		return err
	}
	s.logger.Infof("ProcessNewVotes: finished batch, %v rewards, %v skipped, checkpoint at block %v", len(rewards), len(result.Skipped), lastBlock)
	return nil
}

// completeBlocks cuts a batch that hit the fetch limit back to the last fully
// read block boundary. A checkpoint taken after a partially read block would
// skip the rest of that block's votes forever.
func completeBlocks(events []*types.VoteEvent) []*types.VoteEvent {
	if len(events) == 0 {
		return events
	}
	last := events[len(events)-1].BlockNum
	cut := len(events)
	for cut > 0 && events[cut-1].BlockNum == last {
		cut--
	}
	return events[:cut]
}

func (s *CuratorVoteService) buildRewardRecords(rewards []reward.CuratorReward, now time.Time) ([]*types.CuratorRewardRecord, []*types.TransferOutbox) {
	var records []*types.CuratorRewardRecord
	var outbox []*types.TransferOutbox
	for _, r := range rewards {
		recId := utils.GenerateId(now, r.Curator, r.Permlink, "curation")
		records = append(records, &types.CuratorRewardRecord{
			Id:            recId,
			VoteId:        r.VoteId,
			Curator:       r.Curator,
			Author:        r.Author,
			Permlink:      r.Permlink,
			Amount:        r.Amount.StringFixed(3),
			VoteTime:      r.VoteTimestamp.Unix(),
			ProcessedTime: r.ProcessedAt.Unix(),
			TransactionId: r.TransactionId,
		})
		op, ok := reward.BuildCuratorRewardTransfer(r.Author, r.Amount, r.Curator, r.Permlink)
		if !ok {
			continue
		}
		outbox = append(outbox, &types.TransferOutbox{
			Id:             utils.GenerateId(now, r.Author, r.Permlink, "transfer"),
			RefId:          recId,
			ContractName:   op.ContractName,
			ContractAction: op.ContractAction,
			Symbol:         op.ContractPayload.Symbol,
			ToAccount:      op.ContractPayload.To,
			Quantity:       op.ContractPayload.Quantity,
			Memo:           op.ContractPayload.Memo,
			Status:         types.TransferStatusPending,
			Time:           now.Unix(),
		})
	}
	return records, outbox
}

func (s *CuratorVoteService) buildUsageRows(result reward.ProcessResult, priorRewarded map[string]string, date string, now time.Time) []*types.CuratorDailyUsage {
	stats := s.processor.BuildDailyStats(result.UpdatedStats, result.Rewards, now)
	var rows []*types.CuratorDailyUsage
	for _, st := range stats {
		total := st.TotalRewarded
		if prior, ok := priorRewarded[st.Curator]; ok {
			if priorAmount, err := decimalFromRecord(prior); err == nil {
				total = total.Add(priorAmount)
			} else {
				s.logger.Errorf("buildUsageRows: fail to convert prior total %v of %v, the error is %v", prior, st.Curator, err)
			}
		}
		rows = append(rows, &types.CuratorDailyUsage{
			Id:            st.Curator + "_" + date,
			Curator:       st.Curator,
			Date:          date,
			VotesUsed:     st.VotesUsed,
			TotalRewarded: total.StringFixed(3),
			Time:          now.Unix(),
		})
	}
	return rows
}

func decimalFromRecord(s string) (decimal.Decimal, error) {
	if len(s) == 0 {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
