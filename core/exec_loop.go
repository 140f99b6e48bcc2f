package core

// Step executes exactly one instruction, or does nothing if the machine
// has already terminated.
func (m *Machine) Step() {
	if m.Terminated {
		return
	}

	pc := m.R[PC]
	halfword := FetchHalfword(m.Mem, pc)
	m.R[PC] = pc + 2

	cat := Decode(halfword)

	if m.Trace != nil {
		m.Trace.record(m.Cycles, pc, halfword, cat)
	}

	var before [RegisterCount]uint32
	trackRegs := m.RegisterTrace != nil && m.RegisterTrace.Enabled
	if trackRegs {
		before = m.R
	}
	cpsrBefore := m.CPSR

	switch cat {
	case CatMoveShiftedRegister:
		execMoveShiftedRegister(m, halfword)
	case CatAddSubtract:
		execAddSubtract(m, halfword)
	case CatImmediate:
		execImmediate(m, halfword)
	case CatALU:
		execALU(m, halfword)
	case CatHiRegisterOrBX:
		execHiRegisterOrBX(m, halfword)
	case CatPCRelativeLoad:
		execPCRelativeLoad(m, halfword)
	case CatLoadStoreRegisterOffset:
		execLoadStoreRegisterOffset(m, halfword)
	case CatLoadStoreSignExtended:
		execLoadStoreSignExtended(m, halfword)
	case CatLoadStoreImmediateOffset:
		execLoadStoreImmediateOffset(m, halfword)
	case CatLoadStoreHalfword:
		execLoadStoreHalfword(m, halfword)
	case CatSPRelativeLoadStore:
		execSPRelativeLoadStore(m, halfword)
	case CatLoadAddress:
		execLoadAddress(m, halfword)
	case CatAddOffsetToSP:
		execAddOffsetToSP(m, halfword)
	case CatPushPop:
		execPushPop(m, halfword)
	case CatMultipleLoadStore:
		execMultipleLoadStore(m, halfword)
	case CatConditionalBranch:
		execConditionalBranch(m, halfword)
	case CatSoftwareInterrupt:
		execSoftwareInterrupt(m, halfword)
	case CatUnconditionalBranch:
		execUnconditionalBranch(m, halfword)
	case CatLongBranchWithLink:
		execLongBranchWithLink(m, halfword)
	default:
		m.Terminated = true
	}

	m.Cycles++

	if m.Coverage != nil {
		m.Coverage.record(pc)
	}
	if m.Stats != nil {
		m.Stats.record(cat)
	}
	if m.FlagTrace != nil && m.CPSR != cpsrBefore {
		m.FlagTrace.record(m.Cycles, pc, cpsrBefore, m.CPSR)
	}
	if trackRegs {
		// PC is excluded: it changes on every instruction, and control
		// flow is already the execution trace's job.
		for i := 0; i < PC; i++ {
			if m.R[i] != before[i] {
				m.RegisterTrace.record(m.Cycles, pc, i, before[i], m.R[i])
			}
		}
	}
}

// Run calls Step up to n times, stopping early once Terminated becomes
// true, and reports how many instructions actually executed.
func (m *Machine) Run(n int) int {
	count := 0
	for count < n && !m.Terminated {
		m.Step()
		count++
	}
	return count
}
