package lighting

// lightingGlobals is declared once in the splat fragment stage.
const lightingGlobals = `//@fx:include gsplat_normal

struct LightingUniforms {
    lightDirection: vec3f,
    lightIntensity: f32,
    lightColor: vec3f,
    ambientIntensity: f32,
    useGsplatNormals: u32,
};`

// lightingStatements shade `color` with `normal` from the splat.
const lightingStatements = `let lightDir = normalize(lighting.lightDirection);
var finalNormal = vec3f(0.0, 1.0, 0.0);
if (lighting.useGsplatNormals != 0u) {
    finalNormal = normal;
}
let diffuse = max(dot(finalNormal, lightDir), 0.0);
color = (lighting.ambientIntensity + diffuse * lighting.lightIntensity) * lighting.lightColor * color;`

const normalVizStatements = `let n = gsplatNormal(gsplat.scales, gsplat.quaternion);
gsplat.rgba = vec4f(n * 0.5 + 0.5, gsplat.rgba.a);`
