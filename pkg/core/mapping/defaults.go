package mapping

import (
	"audit_workpaper/pkg/models"
)

// Z3-2 rows. Totals, subtotals and net lines hold formulas in the template.

var balanceSheetLines = []Line{
	// 流动资产
	{Key: "货币资金", Row: 7},
	{Key: "交易性金融资产", Row: 8},
	{Key: "衍生金融资产", Row: 9},
	{Key: "应收票据", Row: 10},
	{Key: "应收账款", Row: 11},
	{Key: "应收款项融资", Row: 12},
	{Key: "预付款项", Row: 13, Aliases: []string{"预付账款"}},
	{Key: "其他应收款", Row: 14},
	{Key: "存货", Row: 15},
	{Key: "合同资产", Row: 16},
	{Key: "持有待售资产", Row: 17},
	{Key: "一年内到期的非流动资产", Row: 18},
	{Key: "其他流动资产", Row: 19},
	{Key: "流动资产合计", Row: 20, Derived: true},
	// 非流动资产
	{Key: "可供出售金融资产", Row: 22},
	{Key: "持有至到期投资", Row: 23},
	{Key: "债权投资", Row: 24},
	{Key: "其他债权投资", Row: 25},
	{Key: "长期应收款", Row: 26},
	{Key: "长期股权投资", Row: 27},
	{Key: "其他权益工具投资", Row: 28},
	{Key: "其他非流动金融资产", Row: 29},
	{Key: "投资性房地产", Row: 30},
	{Key: "固定资产", Row: 31},
	{Key: "在建工程", Row: 32},
	{Key: "生产性生物资产", Row: 33},
	{Key: "油气资产", Row: 34},
	{Key: "使用权资产", Row: 35},
	{Key: "无形资产", Row: 36},
	{Key: "开发支出", Row: 37},
	{Key: "商誉", Row: 38},
	{Key: "长期待摊费用", Row: 39},
	{Key: "递延所得税资产", Row: 40},
	{Key: "其他非流动资产", Row: 41},
	{Key: "非流动资产合计", Row: 42, Derived: true},
	{Key: "资产总计", Row: 43, Derived: true},
	// 流动负债
	{Key: "短期借款", Row: 45},
	{Key: "交易性金融负债", Row: 46},
	{Key: "衍生金融负债", Row: 47},
	{Key: "应付票据", Row: 48},
	{Key: "应付账款", Row: 49},
	{Key: "预收款项", Row: 50, Aliases: []string{"预收账款"}},
	{Key: "合同负债", Row: 51},
	{Key: "应付职工薪酬", Row: 52},
	{Key: "应交税费", Row: 53},
	{Key: "其他应付款", Row: 54},
	{Key: "持有待售负债", Row: 55},
	{Key: "一年内到期的非流动负债", Row: 56},
	{Key: "其他流动负债", Row: 57},
	{Key: "流动负债合计", Row: 58, Derived: true},
	// 非流动负债
	{Key: "长期借款", Row: 60},
	{Key: "应付债券", Row: 61},
	{Key: "租赁负债", Row: 62},
	{Key: "长期应付款", Row: 63},
	{Key: "预计负债", Row: 64},
	{Key: "递延收益", Row: 65},
	{Key: "递延所得税负债", Row: 66},
	{Key: "其他非流动负债", Row: 67},
	{Key: "非流动负债合计", Row: 68, Derived: true},
	{Key: "负债合计", Row: 69, Derived: true},
	// 所有者权益
	{Key: "实收资本", Row: 71, Aliases: []string{"实收资本（或股本）", "实收资本(或股本)"}},
	{Key: "其他权益工具", Row: 72},
	{Key: "资本公积", Row: 73},
	{Key: "减：库存股", Row: 74, Aliases: []string{"库存股"}},
	{Key: "其他综合收益", Row: 75},
	{Key: "专项储备", Row: 76},
	{Key: "盈余公积", Row: 77},
	{Key: "未分配利润", Row: 78},
	{Key: "所有者权益合计", Row: 79, Derived: true, Aliases: []string{"所有者权益（或股东权益）合计"}},
	{Key: "负债和所有者权益总计", Row: 80, Derived: true, Aliases: []string{"负债和所有者权益（或股东权益）总计"}},
}

var incomeStatementLines = []Line{
	{Key: "营业收入", Row: 95},
	{Key: "营业成本", Row: 96},
	{Key: "税金及附加", Row: 97},
	{Key: "销售费用", Row: 98},
	{Key: "管理费用", Row: 99},
	{Key: "研发费用", Row: 100},
	{Key: "财务费用", Row: 101},
	{Key: "其他收益", Row: 104},
	{Key: "投资收益", Row: 105},
	{Key: "公允价值变动收益", Row: 109},
	{Key: "信用减值损失", Row: 110},
	{Key: "资产减值损失", Row: 111},
	{Key: "资产处置收益", Row: 112},
	{Key: "营业利润", Row: 113},
	{Key: "营业外收入", Row: 114},
	{Key: "营业外支出", Row: 115},
	{Key: "利润总额", Row: 116},
	{Key: "所得税费用", Row: 117},
	{Key: "净利润", Row: 118},
}

var cashFlowLines = []Line{
	// 经营活动
	{Key: "销售商品、提供劳务收到的现金", Row: 146, Aliases: []string{"销售商品收到的现金"}},
	{Key: "收到的税费返还", Row: 154},
	{Key: "收到的其他与经营活动有关的现金", Row: 162, Aliases: []string{"收到其他与经营活动有关的现金"}},
	{Key: "经营活动现金流入小计", Row: 166, Derived: true},
	{Key: "购买商品、接受劳务支付的现金", Row: 167, Aliases: []string{"购买商品支付的现金"}},
	{Key: "支付给职工以及为职工支付的现金", Row: 177, Aliases: []string{"支付给职工的现金", "支付给职工以及为职工支付现金"}},
	{Key: "支付的各项税费", Row: 184, Aliases: []string{"支付的各项税款"}},
	{Key: "支付的其他与经营活动有关的现金", Row: 190, Aliases: []string{"支付其他与经营活动有关的现金"}},
	{Key: "经营活动现金流出小计", Row: 201, Derived: true},
	{Key: "经营活动产生的现金流量净额", Row: 202, Derived: true, Aliases: []string{"经营活动净额"}},
	// 投资活动
	{Key: "收回投资收到的现金", Row: 204, Aliases: []string{"收回投资所收到的现金"}},
	{Key: "取得投资收益收到的现金", Row: 209, Aliases: []string{"取得投资收益所收到的现金"}},
	{Key: "处置固定资产、无形资产和其他长期资产收回的现金净额", Row: 213, Aliases: []string{"处置固定资产收回的现金"}},
	{Key: "投资活动现金流入小计", Row: 221, Derived: true},
	{Key: "购建固定资产、无形资产和其他长期资产支付的现金", Row: 222, Aliases: []string{"购建固定资产支付的现金", "购建固定资产、无形资产和其他长期资产所支付的现金"}},
	{Key: "投资支付的现金", Row: 228, Aliases: []string{"投资所支付的现金"}},
	{Key: "投资活动现金流出小计", Row: 242, Derived: true},
	{Key: "投资活动产生的现金流量净额", Row: 243, Derived: true, Aliases: []string{"投资活动净额"}},
	// 筹资活动
	{Key: "吸收投资收到的现金", Row: 245, Aliases: []string{"吸收投资所收到的现金"}},
	{Key: "取得借款收到的现金", Row: 250, Aliases: []string{"取得借款所收到的现金"}},
	{Key: "收到的其他与筹资活动有关的现金", Row: 255, Aliases: []string{"收到其他与筹资活动有关的现金"}},
	{Key: "筹资活动现金流入小计", Row: 261, Derived: true},
	{Key: "偿还债务支付的现金", Row: 262, Aliases: []string{"偿还债务所支付的现金"}},
	{Key: "分配股利、利润或偿付利息支付的现金", Row: 269, Aliases: []string{"分配股利、利润或偿付利息所支付的现金"}},
	{Key: "支付的其他与筹资活动有关的现金", Row: 274, Aliases: []string{"支付其他与筹资活动有关的现金"}},
	{Key: "筹资活动现金流出小计", Row: 282, Derived: true},
	{Key: "筹资活动产生的现金流量净额", Row: 283, Derived: true, Aliases: []string{"筹资活动净额"}},
	// 汇总
	{Key: "汇率变动对现金及现金等价物的影响", Row: 284, Aliases: []string{"汇率变动对现金的影响", "汇率变动对现金及现金等价物的影响额"}},
	{Key: "现金及现金等价物净增加额", Row: 285, Derived: true, Aliases: []string{"现金净增加额"}},
	{Key: "期初现金及现金等价物余额", Row: 286, Aliases: []string{"期初现金余额", "加：期初现金及现金等价物余额"}},
	{Key: "期末现金及现金等价物余额", Row: 287, Aliases: []string{"期末现金余额"}},
}

// DefaultLines returns a copy of the built-in Z3-2 lines of a statement.
func DefaultLines(st models.StatementType) []Line {
	var src []Line
	switch st {
	case models.BalanceSheet:
		src = balanceSheetLines
	case models.IncomeStatement:
		src = incomeStatementLines
	case models.CashFlow:
		src = cashFlowLines
	}
	out := make([]Line, len(src))
	for i, l := range src {
		l.Aliases = append([]string(nil), l.Aliases...)
		out[i] = l
	}
	return out
}

// DefaultConfig builds the built-in tables under a layout, merged with
// optional overrides. Any ambiguity, built-in or introduced by an override,
// fails here.
func DefaultConfig(layout Layout, overrides *Overrides) (*Config, error) {
	var tables []*Table
	for _, st := range models.StatementTypes {
		lines := DefaultLines(st)
		if overrides != nil {
			var err error
			lines, err = overrides.apply(st, lines)
			if err != nil {
				return nil, err
			}
		}
		t, err := NewTable(st, lines)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return NewConfig(layout, tables...)
}
