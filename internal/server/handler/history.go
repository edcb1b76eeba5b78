package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hud-govt-nz/hud-automate/internal/common"
	"github.com/hud-govt-nz/hud-automate/internal/server/dao"
	"github.com/hud-govt-nz/hud-automate/internal/server/model"
	"github.com/hud-govt-nz/hud-automate/pkg/api"
)

const historyPageSize = 20

func (h *Handler) ListHistory(c *gin.Context) {
	runs, err := dao.NewRunExecDao().Latest(c, historyPageSize)
	if err != nil {
		common.Error(c, common.NewErrNo(common.GetHistoryFail))
		return
	}

	briefs := make([]api.RunBrief, 0, len(runs))
	for _, run := range runs {
		briefs = append(briefs, briefOf(run))
	}
	common.Success(c, briefs)
}

func (h *Handler) HistoryDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		common.Error(c, common.NewErrNo(common.RequestInvalid))
		return
	}

	run, err := dao.NewRunExecDao().GetByID(c, uint(id))
	if err != nil {
		common.Error(c, common.NewErrNo(common.GetHistoryDetailFail))
		return
	}

	detail := api.RunDetail{
		RunBrief:   briefOf(*run),
		ErrorText:  run.ErrorText,
		ReportJSON: run.ReportJSON,
	}
	common.Success(c, detail)
}

func briefOf(run model.RunExecution) api.RunBrief {
	brief := api.RunBrief{
		ID:        run.ID,
		RunUUID:   run.RunUUID,
		RunName:   run.RunName,
		Project:   run.Project,
		Status:    run.Status,
		StartTime: run.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if run.Status != "" {
		brief.EndTime = run.UpdatedAt.Format("2006-01-02 15:04:05")
	}
	return brief
}
