package effects

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/common"
	"github.com/Carmen-Shannon/splatfx/engine/splat"
)

// Apply runs the CPU form of an effect on one splat.
//
// Parameters:
//   - kind: the effect; EffectNone returns s unchanged
//   - s: the object-space splat
//   - t: elapsed seconds
//   - intensity: the blend weight
//   - meshCenter: the mesh bounding box center
//
// Returns:
//   - splat.Splat: the modified splat
func Apply(kind EffectType, s splat.Splat, t, intensity float32, meshCenter mgl32.Vec3) splat.Splat {
	pos, color := s.Center, s.RGBA
	switch kind {
	case EffectElectronic:
		s.Center = headMovement(pos, t)
		f := fractal1(pos, t, intensity)
		s.RGBA = mixVec4(color, mulVec4(color, f), intensity)
	case EffectDeepMeditation:
		e := fractal2(pos, s.Scales, color, t, intensity)
		s.RGBA = mixVec4(color, e, intensity)
		s.Center = breathAnimation(pos, t)
	case EffectWaves:
		e := sin3D(pos, t)
		s.RGBA = mixVec4(color, mulVec4(color, e), intensity)
		p := pos
		p[1] += 1
		p = p.Mul(1 + e[0]*0.05*intensity)
		p[1] -= 1
		s.Center = p
	case EffectFlare:
		e := flare(pos, t)
		w := math32.Abs(e[3])
		s.Center = e.Vec3()
		s.RGBA = common.MixVec3(color.Vec3(), mgl32.Vec3{1, 1, 1}, w).Vec4(common.Mix(color[3], 0.3, w))
	case EffectDisintegrate:
		e := disintegrate(pos, t, intensity)
		s.Center = e.Vec3()
		s.Scales = common.MixVec3(mgl32.Vec3{0.01, 0.01, 0.01}, s.Scales, e[3])
	case EffectDisco:
		s.RGBA = disco(pos, color, t, intensity, meshCenter)
	}
	return s
}

func mixVec4(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}

func mulVec4(a, b mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}

func mulVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func maxVec3(v mgl32.Vec3, lo float32) mgl32.Vec3 {
	return mgl32.Vec3{max(v[0], lo), max(v[1], lo), max(v[2], lo)}
}

func addScalar(v mgl32.Vec3, s float32) mgl32.Vec3 {
	return mgl32.Vec3{v[0] + s, v[1] + s, v[2] + s}
}

func headMovement(pos mgl32.Vec3, t float32) mgl32.Vec3 {
	x, y := common.Rot2(pos[0], pos[1], common.Smoothstep(-1, -2, pos[1])*0.2*math32.Sin(t*2))
	return mgl32.Vec3{x, y, pos[2]}
}

func breathAnimation(pos mgl32.Vec3, t float32) mgl32.Vec3 {
	b := math32.Sin(t * 1.5)
	y, z := common.Rot2(pos[1], pos[2], common.Smoothstep(-1, -3, pos[1])*0.15*-b)
	result := mgl32.Vec3{pos[0], y + 1.2, z + 0.3}
	result = result.Mul(1 + math32.Exp(-3*pos.Len())*b)
	result[2] -= 0.3
	result[1] -= 1.2
	return result
}

func fractal1(pos mgl32.Vec3, t, intensity float32) mgl32.Vec4 {
	m := float32(100)
	p := pos.Mul(0.1)
	p[1] += 0.5
	for i := range 8 {
		d := common.Clamp(math32.Abs(p[0]*p[1]), 0.3, 3)
		p = addScalar(common.Vec3Abs(p).Mul(1/d), -1)
		p[0], p[1] = common.Rot2(p[0], p[1], math32.Pi/2)
		if i > 1 {
			xy := math32.Sqrt(p[0]*p[0] + p[1]*p[1])
			m = min(m, xy+common.Step(0.3, common.Fract(p[2]*0.5+t*0.5+float32(i)*0.2)))
		}
	}
	m = common.Step(m, 0.5) * 1.3 * intensity
	base := mgl32.Vec4{-pos[1] * 0.3, 0.5, 0.7, 0.3}.Mul(intensity)
	return mgl32.Vec4{base[0] + m, base[1] + m, base[2] + m, base[3] + m}
}

func fractal2(center, scales mgl32.Vec3, rgba mgl32.Vec4, t, intensity float32) mgl32.Vec4 {
	pos := center
	splatSize := scales.Len()
	p := pos.Mul(0.65)
	pos[1] += 2
	var c float32
	l2 := p.Len()
	m := float32(100)
	for range 10 {
		p = addScalar(common.Vec3Abs(p).Mul(1/p.Dot(p)), -0.8)
		l := p.Len()
		c += math32.Exp(-math32.Abs(l-l2) * (1 + math32.Sin(t*1.5+pos[1])))
		l2 = l
		m = min(m, l)
	}
	c = common.Smoothstep(0.3, 0.5, m+math32.Sin(t*1.5+pos[1]*0.5)) + c*0.1
	glow := rgba.Vec3().Len() * intensity
	return mgl32.Vec4{glow * c, glow * c * c, glow * c * c * c, rgba[3] * math32.Exp(-20*splatSize) * m * intensity}
}

func sin3D(p mgl32.Vec3, t float32) mgl32.Vec4 {
	var w mgl32.Vec3
	for i := range 3 {
		w[i] = math32.Sin(p[i]*5 + t*3)
	}
	m := math32.Exp(-2*w.Len())*5 + 0.3
	return mgl32.Vec4{m, m, m, m}
}

func disintegrate(pos mgl32.Vec3, t, intensity float32) mgl32.Vec4 {
	p := pos.Add(addScalar(common.Hash3(pos).Mul(2), -1).Mul(intensity))
	tt := common.Smoothstep(-1, 0.5, -math32.Sin(t-pos[1]*0.5))
	p[0], p[2] = common.Rot2(p[0], p[2], tt*2+p[1]*2*tt)
	return common.MixVec3(p, pos, tt).Vec4(tt)
}

func flare(pos mgl32.Vec3, t float32) mgl32.Vec4 {
	p := mgl32.Vec3{0, -1.5, 0}
	tt := common.Smoothstep(-1, 0.5, math32.Sin(t+common.Hash3(pos)[0]))
	tt *= tt
	p[0] += math32.Sin(t*2) * tt
	p[2] += math32.Sin(t*2) * tt
	p[1] += math32.Sin(t) * tt
	return common.MixVec3(pos, p, tt).Vec4(tt)
}

var (
	discoRoom    = mgl32.Vec3{0.02, 0.02, 0.03}
	discoPalette = [3]mgl32.Vec3{{1, 0.2, 0.2}, {0.2, 0.2, 1}, {0.2, 1, 0.2}}
	discoTints   = [4]mgl32.Vec3{{1, 0.8, 0.8}, {0.8, 0.8, 1}, {0.8, 1, 0.8}, {1, 1, 1}}
)

func discoLights(worldPos, meshCenter mgl32.Vec3, t float32) mgl32.Vec3 {
	distToBall := max(worldPos.Sub(meshCenter).Len(), 0.001)

	cycle := t*0.4 - 3*math32.Floor(t*0.4/3)
	mainColor := discoPalette[2]
	if cycle < 1 {
		mainColor = discoPalette[0]
	} else if cycle < 2 {
		mainColor = discoPalette[1]
	}

	var total mgl32.Vec3
	var totalIntensity float32
	accumulate := func(lightPos mgl32.Vec3, size, gain float32, color mgl32.Vec3) {
		d := max(worldPos.Sub(lightPos).Len(), 0.001)
		strength := (1 - common.Smoothstep(0, size, d)) * gain
		total = total.Add(color.Mul(strength))
		totalIntensity += strength
	}

	for i := range 16 {
		for j := range 4 {
			idx := float32(i*4 + j)
			angle := float32(i)*0.3927 + t*0.8
			radius := 0.5 + float32(j)*0.8
			orbit := mgl32.Vec3{math32.Cos(angle) * radius, math32.Sin(angle) * 0.3, math32.Sin(angle) * radius}
			size := 0.15 + common.Hash3(mgl32.Vec3{idx, idx, idx})[0]*0.1
			pulse := 0.7 + 0.3*math32.Sin(t*3+idx*0.5)
			color := maxVec3(addScalar(mainColor.Add(common.Hash3(mgl32.Vec3{idx, 1, 0}).Mul(0.4)), -0.2), 0.3)
			accumulate(meshCenter.Add(orbit), size, 2.5*pulse, color)
		}
	}

	for k := range 12 {
		for l := range 4 {
			idx := float32(64 + k*4 + l)
			angle := float32(k)*0.5236 + t*0.6*1.3
			radius := 2 + float32(l)*1.2
			height := (common.Hash3(mgl32.Vec3{float32(k), float32(l), 0})[0] - 0.5) * 3
			orbit := mgl32.Vec3{math32.Cos(angle) * radius, height, math32.Sin(angle) * radius}
			size := 0.12 + common.Hash3(mgl32.Vec3{idx, idx, idx})[0]*0.08
			pulse := 0.6 + 0.4*math32.Sin(t*4+idx*0.7)
			accumulate(meshCenter.Add(orbit), size, 3*pulse, mulVec3(mainColor, discoTints[l]))
		}
	}

	for n := range 32 {
		fi := float32(n)
		offset := addScalar(common.Hash3(mgl32.Vec3{fi, 2, 0}).Mul(8), -4)
		offset[1] = math32.Abs(offset[1]) * 0.5
		drift := mgl32.Vec3{
			math32.Sin(t*0.5+fi*0.3) * 0.5,
			math32.Cos(t*0.7+fi*0.5) * 0.3,
			math32.Sin(t*0.6+fi*0.4) * 0.5,
		}
		size := 0.1 + common.Hash3(mgl32.Vec3{fi, fi, fi})[0]*0.05
		seed := t*2 + fi
		blink := common.Step(0.3, common.Hash3(mgl32.Vec3{seed, seed, seed})[0])
		color := maxVec3(common.MixVec3(mainColor, common.Hash3(mgl32.Vec3{fi, 3, 0}), 0.3), 0.4)
		accumulate(meshCenter.Add(offset).Add(drift), size, 4*blink, color)
	}

	lit := discoRoom
	if totalIntensity > 0 {
		average := total.Mul(1 / totalIntensity)
		lit = lit.Add(average.Mul(totalIntensity * 0.3))
		if brightness := totalIntensity * 0.1; brightness > 0.5 {
			lit = lit.Add(average.Mul((brightness - 0.5) * 2))
		}
	}
	return lit.Mul(1 / (1 + distToBall*0.3))
}

func disco(pos mgl32.Vec3, rgba mgl32.Vec4, t, intensity float32, meshCenter mgl32.Vec3) mgl32.Vec4 {
	lights := discoLights(pos, meshCenter, t)
	rgb := rgba.Vec3().Mul(0.05).Add(lights.Mul(intensity * 6))
	lum := lights.Len()
	if lum > 0.1 {
		rgb = common.MixVec3(rgb, rgb.Mul(2), lum)
	}
	return rgb.Vec4(min(1, rgba[3]+lum*1.2))
}
